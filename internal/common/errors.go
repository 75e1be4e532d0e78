// Package common — errors.go определяет ошибки, которые используются
// во всех модулях сервиса ленты.
// Обработчики различают их через errors.Is и отдают клиенту понятный статус.
package common

import "errors"

// Ошибки каталога игр и кеша конфигурации
var (
	// ErrCacheNotInitialized — кеш конфигурации ещё ни разу не обновлялся
	ErrCacheNotInitialized = errors.New("кеш конфигурации не инициализирован")
	// ErrNoActiveGames — нет ни одной активной игры
	ErrNoActiveGames = errors.New("нет активных игр")
	// ErrGameNotFound — игра с таким gameId не найдена
	ErrGameNotFound = errors.New("игра не найдена")
	// ErrInvalidLadder — кастомная лестница ставок некорректна
	ErrInvalidLadder = errors.New("лестница ставок должна быть строго возрастающей, из положительных чисел, минимум 5 значений")
	// ErrInvalidLadderType — неизвестный тип лестницы
	ErrInvalidLadderType = errors.New("неизвестный тип лестницы")
	// ErrInvalidWeight — вес провайдера вне диапазона 0–100
	ErrInvalidWeight = errors.New("вес провайдера должен быть целым числом от 0 до 100")
	// ErrUnknownSetting — настройка, которую нельзя менять через админку
	ErrUnknownSetting = errors.New("неизвестная настройка")
	// ErrEmptyUpdate — в запросе на изменение нет ни одного поля
	ErrEmptyUpdate = errors.New("нет полей для обновления")
)

// Ошибки ленты транзакций
var (
	// ErrInvalidTransaction — ручная транзакция не прошла валидацию
	ErrInvalidTransaction = errors.New("некорректная транзакция")
	// ErrTransactionNotFound — транзакция не найдена
	ErrTransactionNotFound = errors.New("транзакция не найдена")
)

// Ошибки админки
var (
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrUnauthorized — нет токена или токен недействителен
	ErrUnauthorized = errors.New("требуется авторизация администратора")
	// ErrImageStoreDisabled — хранилище картинок (S3) не настроено
	ErrImageStoreDisabled = errors.New("хранилище изображений не настроено")
	// ErrImageTooLarge — файл больше допустимого размера
	ErrImageTooLarge = errors.New("файл изображения слишком большой")
	// ErrUnsupportedImage — неподдерживаемый формат изображения
	ErrUnsupportedImage = errors.New("поддерживаются только png, jpeg и webp")
)

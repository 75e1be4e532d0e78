// Package feed — seed.go заполняет пустую ленту стартовыми записями.
package feed

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/features/generator"
)

type sample struct {
	username   string
	amount     string
	typ        generator.Type
	game       string
	multiplier string
}

var samples = []sample{
	{"CasinoVIP", "25000.00", generator.TypeWin, "Gates of Olympus", "125.5x"},
	{"LuckyAce", "3200.00", generator.TypeWin, "Sweet Bonanza", "32x"},
	{"HighRoller99", "8500.00", generator.TypeLoss, "Blackjack", ""},
	{"Player777", "1500.00", generator.TypeWin, "Aviator", "3.2x"},
	{"GoldRush", "450.00", generator.TypeLoss, "Crash", ""},
	{"DiamondHands", "12000.00", generator.TypeWin, "Lightning Roulette", "50x"},
	{"SlotMaster", "2100.00", generator.TypeLoss, "Book of Dead", ""},
	{"BigWinner", "7800.00", generator.TypeWin, "Crazy Time", "15.6x"},
	{"NeonPlayer", "950.00", generator.TypeLoss, "Plinko", ""},
	{"WhaleBet", "35000.00", generator.TypeWin, "Mines", "87.5x"},
	{"ProGamer", "180.00", generator.TypeWin, "Dice", "2.1x"},
	{"StarGambler", "5600.00", generator.TypeLoss, "Baccarat", ""},
	{"JackpotHunter", "15500.00", generator.TypeWin, "Big Bass Bonanza", "62x"},
	{"BetKing", "720.00", generator.TypeWin, "Limbo", "4.8x"},
	{"TurboSpin", "3400.00", generator.TypeLoss, "Monopoly Live", ""},
}

// SeedSamples вставляет стартовые транзакции, если таблица пуста.
// Возвращает количество вставленных записей.
func SeedSamples(ctx context.Context, store Store, currency string) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка проверки ленты: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	log.Info("Лента пуста, добавляем стартовые транзакции")
	now := time.Now()
	for i, s := range samples {
		t := Transaction{
			Username:  s.username,
			Amount:    s.amount,
			Currency:  currency,
			Type:      s.typ,
			Game:      s.game,
			Timestamp: now.Add(time.Duration(i-len(samples)) * time.Second),
		}
		if s.multiplier != "" {
			m := s.multiplier
			t.Multiplier = &m
		}
		if _, err := store.Create(ctx, t); err != nil {
			return i, err
		}
	}
	return len(samples), nil
}

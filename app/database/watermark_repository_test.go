package database

import (
	"context"
	"testing"
)

func TestWatermarkDefaultsToZero(t *testing.T) {
	repo := NewWatermarkRepository(testDB(t))

	got, err := repo.GetWatermark(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("Expected 0 for missing watermark, got %d", got)
	}
}

func TestWatermarkRoundTrip(t *testing.T) {
	repo := NewWatermarkRepository(testDB(t))

	if err := repo.SetWatermark(context.Background(), 1700000500); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetWatermark(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != 1700000500 {
		t.Errorf("Expected 1700000500, got %d", got)
	}
}

func TestWatermarkUpsert(t *testing.T) {
	repo := NewWatermarkRepository(testDB(t))

	if err := repo.SetWatermark(context.Background(), 100); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetWatermark(context.Background(), 200); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetWatermark(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != 200 {
		t.Errorf("Expected 200 after upsert, got %d", got)
	}
}

package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

// FileSource serves market prices from a JSON snapshot keyed by NM SKU,
// the hand-off format the price research tooling exports.
type FileSource struct {
	prices map[string]decimal.Decimal
}

// NewFileSource loads a price snapshot from disk. The file maps SKU to a
// USD price, either as a JSON number or a string.
func NewFileSource(path string) (*FileSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read price file: %w", err)
	}

	prices := make(map[string]decimal.Decimal)
	if err := json.Unmarshal(raw, &prices); err != nil {
		return nil, fmt.Errorf("failed to parse price file %s: %w", path, err)
	}

	return &FileSource{prices: prices}, nil
}

// Len reports how many prices the snapshot holds
func (s *FileSource) Len() int {
	return len(s.prices)
}

func (s *FileSource) MarketPriceUSD(_ context.Context, variant domain.Variant) (decimal.Decimal, bool, error) {
	price, ok := s.prices[variant.SKU]
	return price, ok, nil
}

// ReloadingFileSource wraps FileSource for long-running processes: the
// snapshot is re-read whenever the file's modification time changes, so the
// research tooling can drop a new export without a restart.
type ReloadingFileSource struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	source  *FileSource
}

func NewReloadingFileSource(path string) *ReloadingFileSource {
	return &ReloadingFileSource{path: path}
}

func (s *ReloadingFileSource) MarketPriceUSD(ctx context.Context, variant domain.Variant) (decimal.Decimal, bool, error) {
	source, err := s.current()
	if err != nil {
		return decimal.Zero, false, err
	}
	return source.MarketPriceUSD(ctx, variant)
}

func (s *ReloadingFileSource) current() (*FileSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat price file: %w", err)
	}

	if s.source == nil || info.ModTime().After(s.modTime) {
		source, err := NewFileSource(s.path)
		if err != nil {
			return nil, err
		}
		s.source = source
		s.modTime = info.ModTime()
	}
	return s.source, nil
}

package credential

import "context"

// NopStore is the store of environments without persistent client storage: reads
// report absent values and writes are dropped.
type NopStore struct{}

var _ Store = NopStore{}

func (NopStore) GetAccess(context.Context) (string, bool, error)  { return "", false, nil }
func (NopStore) GetRefresh(context.Context) (string, bool, error) { return "", false, nil }
func (NopStore) SetPair(context.Context, string, string) error    { return nil }
func (NopStore) Clear(context.Context) error                      { return nil }
func (NopStore) HasPair(context.Context) (bool, error)            { return false, nil }
func (NopStore) Close() error                                     { return nil }

package locations

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/i474232898/snowhound/internal/store"
	"github.com/i474232898/snowhound/internal/weather"
)

// FavoritesKey is the store key holding the favorites list.
const FavoritesKey = "snowhound-favorites"

// Favorites persists the user's favorite locations in a KV store.
type Favorites struct {
	kv store.KV
}

func NewFavorites(kv store.KV) *Favorites {
	return &Favorites{kv: kv}
}

// List returns the stored favorites in insertion order.
func (f *Favorites) List(ctx context.Context) ([]weather.Location, error) {
	raw, err := f.kv.Get(ctx, FavoritesKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var favs []weather.Location
	if err := json.Unmarshal(raw, &favs); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	return favs, nil
}

// Add stores loc tagged as a favorite. Adding an existing id is a no-op.
func (f *Favorites) Add(ctx context.Context, loc weather.Location) error {
	favs, err := f.List(ctx)
	if err != nil {
		return err
	}
	for _, existing := range favs {
		if existing.Equal(loc) {
			return nil
		}
	}
	return f.save(ctx, append(favs, loc.WithType(weather.LocationFavorite)))
}

// Remove deletes the favorite with the given id.
func (f *Favorites) Remove(ctx context.Context, id string) error {
	favs, err := f.List(ctx)
	if err != nil {
		return err
	}
	kept := favs[:0]
	for _, l := range favs {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	return f.save(ctx, kept)
}

// IsFavorite reports whether id is stored.
func (f *Favorites) IsFavorite(ctx context.Context, id string) (bool, error) {
	favs, err := f.List(ctx)
	if err != nil {
		return false, err
	}
	for _, l := range favs {
		if l.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *Favorites) save(ctx context.Context, favs []weather.Location) error {
	if favs == nil {
		favs = []weather.Location{}
	}
	raw, err := json.Marshal(favs)
	if err != nil {
		return err
	}
	return f.kv.Set(ctx, FavoritesKey, raw)
}

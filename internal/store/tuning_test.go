package store

import (
	"errors"
	"testing"

	"github.com/ayusman/heroswap/internal/tuning"
)

func TestTuningRepository(t *testing.T) {
	t.Run("get missing returns not found", func(t *testing.T) {
		repo := newTestStore(t).Tuning()
		if _, err := repo.Get(tuning.Hero1); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		o, ok, err := repo.Lookup(tuning.Hero1)
		if err != nil || ok || !o.Empty() {
			t.Errorf("expected empty lookup, got %+v %v %v", o, ok, err)
		}
	})

	t.Run("upsert stores only present fields", func(t *testing.T) {
		repo := newTestStore(t).Tuning()
		rec, err := repo.Upsert(tuning.Hero1, tuning.Override{ClipScale: tuning.Float(1.8), RemoveOriginal: tuning.Bool(false)})
		if err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		if rec.Override.ClipScale == nil || *rec.Override.ClipScale != 1.8 {
			t.Errorf("expected clip scale 1.8, got %v", rec.Override.ClipScale)
		}
		if rec.Override.RemoveOriginal == nil || *rec.Override.RemoveOriginal {
			t.Errorf("expected removeOriginal false, got %v", rec.Override.RemoveOriginal)
		}
		if rec.Override.MaskScale != nil {
			t.Errorf("expected mask scale unset, got %v", *rec.Override.MaskScale)
		}
	})

	t.Run("second upsert merges", func(t *testing.T) {
		repo := newTestStore(t).Tuning()
		if _, err := repo.Upsert(tuning.Hero1, tuning.Override{ClipScale: tuning.Float(1.8)}); err != nil {
			t.Fatal(err)
		}
		rec, err := repo.Upsert(tuning.Hero1, tuning.Override{OffsetX: tuning.Float(-3)})
		if err != nil {
			t.Fatal(err)
		}
		if rec.Override.ClipScale == nil || *rec.Override.ClipScale != 1.8 {
			t.Error("expected earlier clip scale to survive")
		}
		if rec.Override.OffsetX == nil || *rec.Override.OffsetX != -3 {
			t.Error("expected offset to be set")
		}
	})

	t.Run("list is ordered", func(t *testing.T) {
		repo := newTestStore(t).Tuning()
		repo.Upsert(tuning.Hero2, tuning.Override{MaskScale: tuning.Float(1)})
		repo.Upsert(tuning.Hero1, tuning.Override{MaskScale: tuning.Float(2)})
		recs, err := repo.List()
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 2 || recs[0].TemplateID != tuning.Hero1 || recs[1].TemplateID != tuning.Hero2 {
			t.Errorf("unexpected list %+v", recs)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo := newTestStore(t).Tuning()
		repo.Upsert(tuning.Hero2, tuning.Override{MaskScale: tuning.Float(1)})
		if err := repo.Delete(tuning.Hero2); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if err := repo.Delete(tuning.Hero2); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("unknown template rejected", func(t *testing.T) {
		repo := newTestStore(t).Tuning()
		if _, err := repo.Upsert(tuning.TemplateID("villain"), tuning.Override{}); err == nil {
			t.Error("expected check constraint failure")
		}
	})

	t.Run("feeds the resolver", func(t *testing.T) {
		repo := newTestStore(t).Tuning()
		repo.Upsert(tuning.Hero1, tuning.Override{UniformScale: tuning.Float(1.9)})
		p, err := tuning.NewResolver(nil, repo).Resolve(tuning.Hero1)
		if err != nil {
			t.Fatal(err)
		}
		if p.UniformScale != 1.9 || p.ClipScale != 2.1 {
			t.Errorf("unexpected resolved profile %+v", p)
		}
	})
}

package testsupport

import (
	"context"
	"testing"

	"fieldinspect/internal/config"
	"fieldinspect/internal/inspection"
	"fieldinspect/internal/store"
)

// Fixture identifiers used by SeedMaize.
const (
	MaizeCropID      int64 = 1
	MaizeReturnID    int64 = 100
	MaizeInspectorID int64 = 55
	MaizeDateSown          = "2024-01-10"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// MaizeTemplates returns the three-stage maize checklist.
func MaizeTemplates() []inspection.StageTemplate {
	return []inspection.StageTemplate{
		{StageName: "Pre-planting", Order: 1, Required: true, PeriodAfterPlantingDays: IntPtr(0)},
		{StageName: "Mid-season", Order: 2, Required: true, PeriodAfterPlantingDays: IntPtr(45)},
		{StageName: "Pre-harvest", Order: 3, Required: true, PeriodAfterPlantingDays: IntPtr(90)},
	}
}

// SeedCrop imports a crop and its templates, returning them as stored.
func SeedCrop(t testing.TB, st *store.Store, cropID int64, name string, templates []inspection.StageTemplate) []inspection.StageTemplate {
	t.Helper()

	stored, err := st.ImportCrop(context.Background(), store.Crop{ID: cropID, Name: name}, templates)
	if err != nil {
		t.Fatalf("store.ImportCrop: %v", err)
	}
	return stored
}

// SeedReturn mirrors a return into the store.
func SeedReturn(t testing.TB, st *store.Store, rec store.ReturnRecord) {
	t.Helper()

	if err := st.UpsertReturn(context.Background(), rec); err != nil {
		t.Fatalf("store.UpsertReturn: %v", err)
	}
}

// SeedMaize seeds the maize crop and one return sown on 2024-01-10.
func SeedMaize(t testing.TB, st *store.Store) []inspection.StageTemplate {
	t.Helper()

	templates := SeedCrop(t, st, MaizeCropID, "Maize", MaizeTemplates())
	SeedReturn(t, st, store.ReturnRecord{
		ID:          MaizeReturnID,
		CropID:      MaizeCropID,
		InspectorID: MaizeInspectorID,
		DateSown:    MaizeDateSown,
	})
	return templates
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// StrPtr returns a pointer to v.
func StrPtr(v string) *string {
	return &v
}

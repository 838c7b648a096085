package service

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/ppec-inventory/internal/config"
	"github.com/ppec-inventory/internal/constants"
	"github.com/ppec-inventory/internal/models"
	"github.com/ppec-inventory/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type inventoryFixture struct {
	svc        *InventoryService
	store      *repository.FileRecordStore
	batches    *repository.FileBatchRepository
	components *repository.FileComponentRepository
	index      *repository.FileBatchIndexRepository
}

func setupInventoryServiceTest(t *testing.T) *inventoryFixture {
	t.Helper()
	return setupInventoryServiceWithLocator(t, nil)
}

func setupInventoryServiceWithLocator(t *testing.T, locator repository.ComponentLocatorRepository) *inventoryFixture {
	t.Helper()
	codec, err := repository.NewRecordCodec(constants.RecordFormatJSON)
	if err != nil {
		t.Fatalf("create codec failed: %v", err)
	}
	store, err := repository.NewFileRecordStore(t.TempDir(), codec)
	if err != nil {
		t.Fatalf("create record store failed: %v", err)
	}
	cfg := &config.Config{
		Catalog: config.DefaultCatalog(),
		Locations: config.LocationsConfig{
			Default:    constants.LocationUnallocated,
			Warehouses: []string{"Paisley", "Dubai"},
		},
	}
	batches := repository.NewBatchRepository(store)
	components := repository.NewComponentRepository(store, locator)
	index := repository.NewBatchIndexRepository(store, constants.DefaultIndexFilename)
	return &inventoryFixture{
		svc:        NewInventoryService(cfg, batches, components, index),
		store:      store,
		batches:    batches,
		components: components,
		index:      index,
	}
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(constants.DateLayout, value)
	if err != nil {
		t.Fatalf("parse date failed: %v", err)
	}
	return d
}

func mustCreateBatch(t *testing.T, svc *InventoryService, componentType, size string, quantity int, date string) *models.Batch {
	t.Helper()
	batch, _, err := svc.CreateBatch(CreateBatchInput{
		ComponentType: componentType,
		Size:          size,
		Quantity:      quantity,
		Today:         mustDate(t, date),
	})
	if err != nil {
		t.Fatalf("create batch failed: %v", err)
	}
	return batch
}

func rawRecord(t *testing.T, f *inventoryFixture, id string) []byte {
	t.Helper()
	data, err := os.ReadFile(f.store.Path(id))
	if err != nil {
		t.Fatalf("read record %s failed: %v", id, err)
	}
	return data
}

func TestInventoryServiceCreateBatch(t *testing.T) {
	f := setupInventoryServiceTest(t)
	batch, components, err := f.svc.CreateBatch(CreateBatchInput{
		ComponentType: "Rudder Pivot Pin",
		Size:          "12mm diameter x 100mm length",
		Quantity:      5,
		Today:         mustDate(t, "20240315"),
	})
	if err != nil {
		t.Fatalf("create batch failed: %v", err)
	}
	if batch.BatchNumber != "202403150001" {
		t.Fatalf("unexpected batch number: %s", batch.BatchNumber)
	}
	if batch.ManufactureDate != "20240315" || batch.AmountComponents != 5 {
		t.Fatalf("unexpected batch header: %+v", batch)
	}
	if batch.Location != constants.LocationUnallocated {
		t.Fatalf("expected default location, got: %s", batch.Location)
	}
	if len(batch.SerialNumbers) != 5 || len(batch.BatchStatus) != 5 || len(components) != 5 {
		t.Fatalf("expected 5 serials/statuses/components, got %d/%d/%d", len(batch.SerialNumbers), len(batch.BatchStatus), len(components))
	}
	for i, serial := range batch.SerialNumbers {
		want := fmt.Sprintf("202403150001-%04d", i+1)
		if serial != want {
			t.Fatalf("serial %d: want %s got %s", i, want, serial)
		}
		if batch.BatchStatus[i] != "Manufactured-Unfinished" {
			t.Fatalf("status %d: got %s", i, batch.BatchStatus[i])
		}
		stored, err := f.svc.GetComponent(serial)
		if err != nil || stored == nil {
			t.Fatalf("component %s not persisted: %v", serial, err)
		}
		if stored.Size != batch.Size || stored.ComponentType != batch.ComponentType || stored.Finish != constants.FinishUnfinished {
			t.Fatalf("unexpected component record: %+v", stored)
		}
	}

	ids, err := f.index.Load()
	if err != nil {
		t.Fatalf("load index failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "202403150001" {
		t.Fatalf("unexpected index: %v", ids)
	}
}

func TestInventoryServiceCreateBatchSequence(t *testing.T) {
	f := setupInventoryServiceTest(t)
	for i := 1; i <= 3; i++ {
		batch := mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 1, "20240101")
		want := fmt.Sprintf("20240101%04d", i)
		if batch.BatchNumber != want {
			t.Fatalf("want %s got %s", want, batch.BatchNumber)
		}
	}
	next := mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 1, "20240102")
	if next.BatchNumber != "202401020001" {
		t.Fatalf("expected sequence reset, got %s", next.BatchNumber)
	}

	ids, err := f.index.Load()
	if err != nil {
		t.Fatalf("load index failed: %v", err)
	}
	want := []string{"202401010001", "202401010002", "202401010003", "202401020001"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Fatalf("unexpected index: %v", ids)
	}
}

func TestInventoryServiceCreateBatchRejectsInvalidInput(t *testing.T) {
	f := setupInventoryServiceTest(t)
	cases := []CreateBatchInput{
		{ComponentType: "Door Seal Clamp Handle", Quantity: 0},
		{ComponentType: "Door Seal Clamp Handle", Quantity: 10000},
		{ComponentType: "", Quantity: 1},
		{ComponentType: "Flux Capacitor", Quantity: 1},
		{ComponentType: "Door Seal Clamp Handle", Size: "XL", Quantity: 1},
		{ComponentType: "Winglet Attachment Strut", Size: "B747 Series", Quantity: 1},
	}
	for _, input := range cases {
		if _, _, err := f.svc.CreateBatch(input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", input, err)
		}
	}
	entries, err := os.ReadDir(f.store.Dir())
	if err != nil {
		t.Fatalf("read dir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files written, got %d", len(entries))
	}
}

func TestInventoryServiceCreateBatchCapacityExceeded(t *testing.T) {
	f := setupInventoryServiceTest(t)
	if err := os.WriteFile(f.index.Path(), []byte(`["202401019999"]`), 0o644); err != nil {
		t.Fatalf("write index failed: %v", err)
	}
	_, _, err := f.svc.CreateBatch(CreateBatchInput{ComponentType: "Door Seal Clamp Handle", Quantity: 1, Today: mustDate(t, "20240101")})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestInventoryServiceCreateBatchSkipsNumbersWithExistingRecords(t *testing.T) {
	f := setupInventoryServiceTest(t)
	mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 1, "20240101")
	mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 1, "20240101")
	// 索引结构合法但缺少最后一个批次
	if err := os.WriteFile(f.index.Path(), []byte(`["202401010001"]`), 0o644); err != nil {
		t.Fatalf("write index failed: %v", err)
	}
	batch := mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 1, "20240101")
	if batch.BatchNumber != "202401010003" {
		t.Fatalf("expected 202401010003, got %s", batch.BatchNumber)
	}
}

func TestInventoryServiceFinishAlreadyFinishedLeavesRecordsUnchanged(t *testing.T) {
	f := setupInventoryServiceTest(t)
	batch := mustCreateBatch(t, f.svc, "Rudder Pivot Pin", "10mm diameter x 75mm length", 3, "20240201")
	serial := batch.SerialNumbers[1]

	if _, _, err := f.svc.FinishComponent(serial, constants.FinishPolished); err != nil {
		t.Fatalf("first finish failed: %v", err)
	}
	componentBefore := rawRecord(t, f, serial)
	batchBefore := rawRecord(t, f, batch.BatchNumber)

	_, _, err := f.svc.FinishComponent(serial, "Paint:RD01")
	if !errors.Is(err, ErrAlreadyFinished) {
		t.Fatalf("expected ErrAlreadyFinished, got %v", err)
	}
	if !bytes.Equal(componentBefore, rawRecord(t, f, serial)) {
		t.Fatalf("component record changed")
	}
	if !bytes.Equal(batchBefore, rawRecord(t, f, batch.BatchNumber)) {
		t.Fatalf("batch record changed")
	}
}

func TestInventoryServiceFinishUpdatesMatchingPosition(t *testing.T) {
	for _, k := range []int{0, 2, 4} {
		t.Run(fmt.Sprintf("position_%d", k), func(t *testing.T) {
			f := setupInventoryServiceTest(t)
			batch := mustCreateBatch(t, f.svc, "Winglet Attachment Strut", "A380 Series", 5, "20240301")
			serial := batch.SerialNumbers[k]

			component, updated, err := f.svc.FinishComponent(serial, "Paint:BL22")
			if err != nil {
				t.Fatalf("finish failed: %v", err)
			}
			if component.Finish != "Paint:BL22" {
				t.Fatalf("unexpected finish: %s", component.Finish)
			}
			stored, err := f.svc.GetBatch(batch.BatchNumber)
			if err != nil || stored == nil {
				t.Fatalf("reload batch failed: %v", err)
			}
			for i, status := range stored.BatchStatus {
				want := "Manufactured-Unfinished"
				if i == k {
					want = "Manufactured-Paint:BL22"
				}
				if status != want || updated.BatchStatus[i] != want {
					t.Fatalf("status %d: want %s got %s", i, want, status)
				}
			}
		})
	}
}

func TestInventoryServiceFinishValidation(t *testing.T) {
	f := setupInventoryServiceTest(t)
	batch := mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 1, "20240401")

	if _, _, err := f.svc.FinishComponent(batch.SerialNumbers[0], "Paint:r1"); !errors.Is(err, ErrInvalidFinish) {
		t.Fatalf("expected ErrInvalidFinish, got %v", err)
	}
	if _, _, err := f.svc.FinishComponent(batch.SerialNumbers[0], constants.FinishUnfinished); !errors.Is(err, ErrInvalidFinish) {
		t.Fatalf("expected ErrInvalidFinish for Unfinished, got %v", err)
	}
	if _, _, err := f.svc.FinishComponent("202404010001-0009", constants.FinishPolished); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := f.svc.FinishComponent("2024-bad", constants.FinishPolished); !errors.Is(err, ErrInvalidIdentifierFormat) {
		t.Fatalf("expected ErrInvalidIdentifierFormat, got %v", err)
	}
}

func TestInventoryServiceFinishInconsistentBatchWritesNothing(t *testing.T) {
	f := setupInventoryServiceTest(t)
	batch := mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 2, "20240501")
	stray := models.Component{
		ManufactureDate: "20240501",
		ComponentType:   "Door Seal Clamp Handle",
		Serial:          "202405010001-0007",
		Status:          constants.ComponentStatusManufactured,
		Finish:          constants.FinishUnfinished,
	}
	if err := f.components.Save(&stray); err != nil {
		t.Fatalf("save stray component failed: %v", err)
	}
	before := rawRecord(t, f, stray.Serial)

	_, _, err := f.svc.FinishComponent(stray.Serial, constants.FinishPolished)
	if !errors.Is(err, ErrInconsistentBatch) {
		t.Fatalf("expected ErrInconsistentBatch, got %v", err)
	}
	if !bytes.Equal(before, rawRecord(t, f, stray.Serial)) {
		t.Fatalf("component record changed")
	}
	stored, _ := f.svc.GetBatch(batch.BatchNumber)
	if len(stored.SerialNumbers) != 2 {
		t.Fatalf("batch record changed: %+v", stored)
	}
}

func TestInventoryServiceAllocate(t *testing.T) {
	f := setupInventoryServiceTest(t)
	batch := mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 2, "20240601")

	if _, err := f.svc.Allocate(batch.BatchNumber, "Atlantis"); !errors.Is(err, ErrInvalidLocation) {
		t.Fatalf("expected ErrInvalidLocation, got %v", err)
	}
	if _, err := f.svc.Allocate(batch.BatchNumber, constants.LocationUnallocated); !errors.Is(err, ErrInvalidLocation) {
		t.Fatalf("expected ErrInvalidLocation for sentinel, got %v", err)
	}
	allocated, err := f.svc.Allocate(batch.BatchNumber, "Paisley")
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if allocated.Location != "Paisley" {
		t.Fatalf("unexpected location: %s", allocated.Location)
	}

	if _, err := f.svc.Allocate(batch.BatchNumber, "Dubai"); !errors.Is(err, ErrAlreadyAllocated) {
		t.Fatalf("expected ErrAlreadyAllocated, got %v", err)
	}
	stored, err := f.svc.GetBatch(batch.BatchNumber)
	if err != nil {
		t.Fatalf("get batch failed: %v", err)
	}
	if stored.Location != "Paisley" {
		t.Fatalf("location changed to %s", stored.Location)
	}

	if _, err := f.svc.Allocate("202406019999", "Dubai"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInventoryServiceListBatchesAfterIndexDeleted(t *testing.T) {
	f := setupInventoryServiceTest(t)
	mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 1, "20240701")
	mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 1, "20240701")
	mustCreateBatch(t, f.svc, "Rudder Pivot Pin", "16mm diameter x 150mm length", 2, "20240702")
	for _, name := range []string{"abcdefghijkl.json", "2024070100x1.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(f.store.Dir(), name), []byte(`{}`), 0o644); err != nil {
			t.Fatalf("write %s failed: %v", name, err)
		}
	}
	if err := os.Remove(f.index.Path()); err != nil {
		t.Fatalf("remove index failed: %v", err)
	}

	batches, err := f.svc.ListBatches()
	if err != nil {
		t.Fatalf("list batches failed: %v", err)
	}
	ids := make([]string, 0, len(batches))
	for _, batch := range batches {
		ids = append(ids, batch.BatchNumber)
	}
	sort.Strings(ids)
	want := []string{"202407010001", "202407010002", "202407020001"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Fatalf("unexpected batches: %v", ids)
	}
}

func TestInventoryServiceListBatchesSkipsMissingRecords(t *testing.T) {
	f := setupInventoryServiceTest(t)
	mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 1, "20240801")
	if err := os.WriteFile(f.index.Path(), []byte(`["202408010001","202408010002"]`), 0o644); err != nil {
		t.Fatalf("write index failed: %v", err)
	}
	batches, err := f.svc.ListBatches()
	if err != nil {
		t.Fatalf("list batches failed: %v", err)
	}
	if len(batches) != 1 || batches[0].BatchNumber != "202408010001" {
		t.Fatalf("unexpected batches: %+v", batches)
	}
}

func TestInventoryServiceListBatchesEmpty(t *testing.T) {
	f := setupInventoryServiceTest(t)
	batches, err := f.svc.ListBatches()
	if err != nil {
		t.Fatalf("list batches failed: %v", err)
	}
	if batches == nil || len(batches) != 0 {
		t.Fatalf("expected empty slice, got %#v", batches)
	}
}

func TestInventoryServiceGetRejectsMalformedIdentifiers(t *testing.T) {
	f := setupInventoryServiceTest(t)
	if _, err := f.svc.GetBatch("2024"); !errors.Is(err, ErrInvalidIdentifierFormat) {
		t.Fatalf("expected ErrInvalidIdentifierFormat, got %v", err)
	}
	if _, err := f.svc.GetComponent("202401010001_0001"); !errors.Is(err, ErrInvalidIdentifierFormat) {
		t.Fatalf("expected ErrInvalidIdentifierFormat, got %v", err)
	}
	batch, err := f.svc.GetBatch("202401010001")
	if err != nil || batch != nil {
		t.Fatalf("expected nil batch without error, got %+v %v", batch, err)
	}
}

func TestInventoryServiceSearchByTypeAndSize(t *testing.T) {
	f := setupInventoryServiceTest(t)
	first := mustCreateBatch(t, f.svc, "Winglet Attachment Strut", "A320 Series", 2, "20240901")
	second := mustCreateBatch(t, f.svc, "Winglet Attachment Strut", "A320 Series", 1, "20240902")
	mustCreateBatch(t, f.svc, "Winglet Attachment Strut", "A380 Series", 1, "20240902")
	if _, err := f.svc.Allocate(second.BatchNumber, "Dubai"); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if _, _, err := f.svc.FinishComponent(first.SerialNumbers[0], constants.FinishPolished); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	result, err := f.svc.SearchByTypeAndSize("Winglet Attachment Strut", "A320 Series")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(result.Finished) != 1 || len(result.Unfinished) != 2 {
		t.Fatalf("unexpected partition: finished=%d unfinished=%d", len(result.Finished), len(result.Unfinished))
	}
	if result.Finished[0].Component.Serial != first.SerialNumbers[0] || result.Finished[0].Location != constants.LocationUnallocated {
		t.Fatalf("unexpected finished item: %+v", result.Finished[0])
	}
	for _, item := range result.Unfinished {
		if item.Component.BatchNumber() == second.BatchNumber && item.Location != "Dubai" {
			t.Fatalf("expected Dubai location, got %+v", item)
		}
	}

	empty, err := f.svc.SearchByTypeAndSize("Rudder Pivot Pin", "10mm diameter x 75mm length")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(empty.Finished) != 0 || len(empty.Unfinished) != 0 {
		t.Fatalf("expected empty result, got %+v", empty)
	}
}

func TestInventoryServiceListBatchComponents(t *testing.T) {
	f := setupInventoryServiceTest(t)
	batch := mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 3, "20241001")
	mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 2, "20241001")

	items, err := f.svc.ListBatchComponents(batch.BatchNumber)
	if err != nil {
		t.Fatalf("list components failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 components, got %d", len(items))
	}
	if _, err := f.svc.ListBatchComponents("202410019999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInventoryServiceRepairBatchStatus(t *testing.T) {
	f := setupInventoryServiceTest(t)
	batch := mustCreateBatch(t, f.svc, "Rudder Pivot Pin", "12mm diameter x 100mm length", 3, "20241101")

	// 模拟组件已写入而批次写入失败的情况
	component, err := f.svc.GetComponent(batch.SerialNumbers[2])
	if err != nil || component == nil {
		t.Fatalf("get component failed: %v", err)
	}
	component.Finish = "Paint:GR05"
	if err := f.components.Save(component); err != nil {
		t.Fatalf("save component failed: %v", err)
	}

	repaired, changed, err := f.svc.RepairBatchStatus(batch.BatchNumber)
	if err != nil {
		t.Fatalf("repair failed: %v", err)
	}
	if !changed {
		t.Fatalf("expected repair to change batch")
	}
	if repaired.BatchStatus[2] != "Manufactured-Paint:GR05" || repaired.BatchStatus[0] != "Manufactured-Unfinished" {
		t.Fatalf("unexpected statuses: %v", repaired.BatchStatus)
	}

	before := rawRecord(t, f, batch.BatchNumber)
	_, changed, err = f.svc.RepairBatchStatus(batch.BatchNumber)
	if err != nil {
		t.Fatalf("second repair failed: %v", err)
	}
	if changed || !bytes.Equal(before, rawRecord(t, f, batch.BatchNumber)) {
		t.Fatalf("expected second repair to be a no-op")
	}
}

func TestInventoryServiceReindexWithComponentLocator(t *testing.T) {
	dsn := fmt.Sprintf("file:inventory_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	locator := repository.NewComponentLocatorRepository(db)
	f := setupInventoryServiceWithLocator(t, locator)

	mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 2, "20241201")
	mustCreateBatch(t, f.svc, "Rudder Pivot Pin", "10mm diameter x 75mm length", 3, "20241201")
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ComponentLocator{}).Error; err != nil {
		t.Fatalf("clear locator failed: %v", err)
	}
	if err := os.Remove(f.index.Path()); err != nil {
		t.Fatalf("remove index failed: %v", err)
	}

	result, err := f.svc.Reindex(true)
	if err != nil {
		t.Fatalf("reindex failed: %v", err)
	}
	if len(result.Batches) != 2 || result.Components != 5 {
		t.Fatalf("unexpected reindex result: %+v", result)
	}
	found, err := f.svc.SearchByTypeAndSize("Rudder Pivot Pin", "10mm diameter x 75mm length")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(found.Unfinished) != 3 {
		t.Fatalf("expected 3 components from locator, got %d", len(found.Unfinished))
	}
}

func TestInventoryServiceCatalogIsCopy(t *testing.T) {
	f := setupInventoryServiceTest(t)
	catalog := f.svc.Catalog()
	if len(catalog) != 3 {
		t.Fatalf("expected 3 catalog entries, got %d", len(catalog))
	}
	catalog[0].Sizes[0] = "mutated"
	if f.svc.Catalog()[0].Sizes[0] == "mutated" {
		t.Fatalf("catalog should not share backing arrays")
	}
}

func TestInventoryServiceStorageFailurePropagates(t *testing.T) {
	f := setupInventoryServiceTest(t)
	batch := mustCreateBatch(t, f.svc, "Door Seal Clamp Handle", "", 2, "20241201")
	if err := os.Remove(f.index.Path()); err != nil {
		t.Fatalf("remove index failed: %v", err)
	}
	if err := os.Mkdir(f.index.Path(), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	if _, err := f.svc.ListBatches(); !errors.Is(err, repository.ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure from list, got %v", err)
	}
	if _, err := f.svc.Reindex(false); !errors.Is(err, repository.ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure from reindex, got %v", err)
	}
	_, _, err := f.svc.CreateBatch(CreateBatchInput{
		ComponentType: "Door Seal Clamp Handle",
		Quantity:      1,
		Today:         mustDate(t, "20241201"),
	})
	if !errors.Is(err, repository.ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure from create, got %v", err)
	}

	info, err := os.Stat(f.index.Path())
	if err != nil || !info.IsDir() {
		t.Fatalf("index path should still be the directory, got %v %v", info, err)
	}
	entries, err := os.ReadDir(f.store.Dir())
	if err != nil {
		t.Fatalf("read dir failed: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Fatalf("leftover temp file %s", entry.Name())
		}
	}
	if got, err := f.svc.GetBatch(batch.BatchNumber); err != nil || got == nil {
		t.Fatalf("existing batch should stay readable, got %v %v", got, err)
	}
}

func TestInventoryServiceSearchWithLocatorAttachedLate(t *testing.T) {
	f := setupInventoryServiceTest(t)
	batch := mustCreateBatch(t, f.svc, "Rudder Pivot Pin", "10mm diameter x 75mm length", 3, "20241201")

	dsn := fmt.Sprintf("file:inventory_service_late_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	components := repository.NewComponentRepository(f.store, repository.NewComponentLocatorRepository(db))
	index := repository.NewBatchIndexRepository(f.store, constants.DefaultIndexFilename)
	svc := NewInventoryService(&config.Config{Catalog: config.DefaultCatalog()}, f.batches, components, index)

	listed, err := svc.ListBatchComponents(batch.BatchNumber)
	if err != nil {
		t.Fatalf("list batch components failed: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 components, got %d", len(listed))
	}
	found, err := svc.SearchByTypeAndSize("Rudder Pivot Pin", "10mm diameter x 75mm length")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(found.Unfinished)+len(found.Finished) != 3 {
		t.Fatalf("expected 3 components, got %+v", found)
	}
}

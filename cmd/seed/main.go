package main

import (
	"flag"
	"time"

	"github.com/ppec-inventory/internal/app"
	"github.com/ppec-inventory/internal/constants"
	"github.com/ppec-inventory/internal/logger"
	"github.com/ppec-inventory/internal/service"
)

func main() {
	var (
		configPath string
		dataDir    string
		quantity   int
		allocate   bool
	)
	flag.StringVar(&configPath, "config", "", "config file (default: ./config.yml)")
	flag.StringVar(&dataDir, "data-dir", "", "record directory, overrides storage.data_dir")
	flag.IntVar(&quantity, "quantity", 5, "components per seeded batch")
	flag.BoolVar(&allocate, "allocate", true, "allocate every other batch to a warehouse")
	flag.Parse()

	a, err := app.Bootstrap(app.Options{ConfigPath: configPath, DataDir: dataDir})
	if err != nil {
		logger.S().Fatalf("bootstrap failed: %v", err)
	}
	defer func() { _ = a.Close() }()
	svc := a.Container.InventoryService
	warehouses := a.Config.Locations.Warehouses

	// 为目录中每个类型与规格各创建一个批次
	today := time.Now()
	created := 0
	for _, entry := range svc.Catalog() {
		sizes := entry.Sizes
		if len(sizes) == 0 {
			sizes = []string{""}
		}
		for _, size := range sizes {
			batch, components, err := svc.CreateBatch(service.CreateBatchInput{
				ComponentType: entry.Type,
				Size:          size,
				Quantity:      quantity,
				Today:         today,
			})
			if err != nil {
				logger.Errorw("seed_create_batch_failed", "component_type", entry.Type, "size", size, "error", err)
				continue
			}
			created++

			if len(components) > 0 {
				if _, _, err := svc.FinishComponent(components[0].Serial, constants.FinishPolished); err != nil {
					logger.Warnw("seed_finish_failed", "serial", components[0].Serial, "error", err)
				}
			}
			if allocate && len(warehouses) > 0 && created%2 == 0 {
				location := warehouses[(created/2-1)%len(warehouses)]
				if _, err := svc.Allocate(batch.BatchNumber, location); err != nil {
					logger.Warnw("seed_allocate_failed", "batch_number", batch.BatchNumber, "error", err)
				}
			}
			logger.Infow("seed_batch_created", "batch_number", batch.BatchNumber, "component_type", entry.Type, "size", size)
		}
	}
	logger.Infow("seed_completed", "batches", created, "data_dir", a.Config.Storage.DataDir)
}

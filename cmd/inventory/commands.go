package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppec-inventory/internal/app"
	"github.com/ppec-inventory/internal/constants"
	"github.com/ppec-inventory/internal/identifier"
	"github.com/ppec-inventory/internal/repository"
	"github.com/ppec-inventory/internal/service"

	"github.com/spf13/cobra"
)

// --- 全局参数 ---
var (
	configPath string
	dataDir    string
	jsonOutput bool

	createType     string
	createSize     string
	createQuantity int
	createDate     string

	finishChoice string
	paintCode    string

	searchType string
	searchSize string

	reindexComponents bool

	current *app.App

	rootCmd = &cobra.Command{
		Use:           "inventory",
		Short:         "Track manufactured batches and their components",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Bootstrap(app.Options{ConfigPath: configPath, DataDir: dataDir})
			if err != nil {
				return err
			}
			current = a
			printStartupBanner()
			return nil
		},
	}

	createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a batch of new components",
		Args:  cobra.NoArgs,
		RunE:  runCreate,
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List all batches in index order",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	batchCmd = &cobra.Command{
		Use:   "batch [batch number]",
		Short: "Show one batch and the status of its components",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	componentCmd = &cobra.Command{
		Use:   "component [serial]",
		Short: "Show one component",
		Args:  cobra.ExactArgs(1),
		RunE:  runComponent,
	}
	componentsCmd = &cobra.Command{
		Use:   "components [batch number]",
		Short: "List every component record of a batch",
		Args:  cobra.ExactArgs(1),
		RunE:  runComponents,
	}
	allocateCmd = &cobra.Command{
		Use:   "allocate [batch number] [location]",
		Short: "Allocate a batch to a warehouse (once)",
		Args:  cobra.ExactArgs(2),
		RunE:  runAllocate,
	}
	finishCmd = &cobra.Command{
		Use:   "finish [serial]",
		Short: "Apply a finish to an unfinished component",
		Args:  cobra.ExactArgs(1),
		RunE:  runFinish,
	}
	searchCmd = &cobra.Command{
		Use:   "search",
		Short: "Find components by type and size",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	reindexCmd = &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the batch index from the record directory",
		Args:  cobra.NoArgs,
		RunE:  runReindex,
	}
	repairCmd = &cobra.Command{
		Use:   "repair [batch number]",
		Short: "Rebuild a batch's status list from its component records",
		Args:  cobra.ExactArgs(1),
		RunE:  runRepair,
	}
	catalogCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Show the configured component catalog",
		Args:  cobra.NoArgs,
		RunE:  runCatalog,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./config.yml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "record directory, overrides storage.data_dir")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of tables")

	createCmd.Flags().StringVar(&createType, "type", "", "component type")
	createCmd.Flags().StringVar(&createSize, "size", "", "component size (empty for types without sizes)")
	createCmd.Flags().IntVarP(&createQuantity, "quantity", "n", 1, "number of components (1-9999)")
	createCmd.Flags().StringVar(&createDate, "date", "", "manufacture date YYYYMMDD (default: today)")
	_ = createCmd.MarkFlagRequired("type")

	finishCmd.Flags().StringVar(&finishChoice, "finish", "", "polished or painted")
	finishCmd.Flags().StringVar(&paintCode, "paint-code", "", "paint code, two letters and two digits (e.g. RD01)")
	_ = finishCmd.MarkFlagRequired("finish")

	searchCmd.Flags().StringVar(&searchType, "type", "", "component type")
	searchCmd.Flags().StringVar(&searchSize, "size", "", "component size")
	_ = searchCmd.MarkFlagRequired("type")

	reindexCmd.Flags().BoolVar(&reindexComponents, "components", false, "also rebuild the component locator")

	rootCmd.AddCommand(
		createCmd,
		listCmd,
		batchCmd,
		componentCmd,
		componentsCmd,
		allocateCmd,
		finishCmd,
		searchCmd,
		reindexCmd,
		repairCmd,
		catalogCmd,
	)
}

func inventory() *service.InventoryService {
	return current.Container.InventoryService
}

func runCreate(cmd *cobra.Command, args []string) error {
	today := time.Now()
	if strings.TrimSpace(createDate) != "" {
		parsed, err := time.ParseInLocation(constants.DateLayout, strings.TrimSpace(createDate), time.Local)
		if err != nil {
			return fmt.Errorf("%w: date %q", service.ErrInvalidInput, createDate)
		}
		today = parsed
	}
	batch, _, err := inventory().CreateBatch(service.CreateBatchInput{
		ComponentType: createType,
		Size:          createSize,
		Quantity:      createQuantity,
		Today:         today,
	})
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), batch)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created batch %s with %d components\n", batch.BatchNumber, batch.AmountComponents)
	return printBatch(cmd.OutOrStdout(), batch)
}

func runList(cmd *cobra.Command, args []string) error {
	batches, err := inventory().ListBatches()
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), batches)
	}
	return printBatchList(cmd.OutOrStdout(), batches)
}

func runBatch(cmd *cobra.Command, args []string) error {
	batch, err := inventory().GetBatch(args[0])
	if err != nil {
		return err
	}
	if batch == nil {
		return fmt.Errorf("%w: batch %s", service.ErrNotFound, args[0])
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), batch)
	}
	return printBatch(cmd.OutOrStdout(), batch)
}

func runComponent(cmd *cobra.Command, args []string) error {
	component, err := inventory().GetComponent(args[0])
	if err != nil {
		return err
	}
	if component == nil {
		return fmt.Errorf("%w: component %s", service.ErrNotFound, args[0])
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), component)
	}
	return printComponent(cmd.OutOrStdout(), component)
}

func runComponents(cmd *cobra.Command, args []string) error {
	components, err := inventory().ListBatchComponents(args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), components)
	}
	return printComponentList(cmd.OutOrStdout(), components)
}

func runAllocate(cmd *cobra.Command, args []string) error {
	batch, err := inventory().Allocate(args[0], args[1])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), batch)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Batch %s allocated to %s\n", batch.BatchNumber, batch.Location)
	return nil
}

func runFinish(cmd *cobra.Command, args []string) error {
	finish, err := service.ParseFinish(finishChoice, paintCode)
	if err != nil {
		return err
	}
	component, _, err := inventory().FinishComponent(args[0], finish)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), component)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Component %s finished: %s\n", component.Serial, component.Finish)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	result, err := inventory().SearchByTypeAndSize(searchType, searchSize)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), result)
	}
	return printSearchResult(cmd.OutOrStdout(), result)
}

func runReindex(cmd *cobra.Command, args []string) error {
	result, err := inventory().Reindex(reindexComponents)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Index rebuilt: %d batches\n", len(result.Batches))
	if reindexComponents {
		fmt.Fprintf(cmd.OutOrStdout(), "Component locator rebuilt: %d components\n", result.Components)
	}
	return nil
}

func runRepair(cmd *cobra.Command, args []string) error {
	batch, changed, err := inventory().RepairBatchStatus(args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{"batch": batch, "changed": changed})
	}
	if !changed {
		fmt.Fprintf(cmd.OutOrStdout(), "Batch %s is consistent\n", batch.BatchNumber)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Batch %s status repaired\n", batch.BatchNumber)
	return printBatch(cmd.OutOrStdout(), batch)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	catalog := inventory().Catalog()
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), catalog)
	}
	return printCatalog(cmd.OutOrStdout(), catalog)
}

// exitCode 将错误映射为进程退出码：2 输入错误，3 记录不存在，4 状态冲突，1 其他
func exitCode(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidFinish),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, identifier.ErrInvalidIdentifierFormat):
		return 2
	case errors.Is(err, service.ErrNotFound):
		return 3
	case errors.Is(err, service.ErrAlreadyFinished),
		errors.Is(err, service.ErrAlreadyAllocated),
		errors.Is(err, service.ErrInconsistentBatch),
		errors.Is(err, identifier.ErrCapacityExceeded):
		return 4
	case errors.Is(err, repository.ErrStorageFailure):
		return 5
	default:
		return 1
	}
}

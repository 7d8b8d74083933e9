// Package export renders master documents into the per-size output tree.
package export

import (
	"cmp"
	"slices"

	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/zerr"
)

// Plan builds one region task per (size, factor) of layout, ordered by size then factor.
func Plan(layout *domain.MasterLayout, factors []int, root string) ([]domain.ExportTask, error) {
	if len(factors) == 0 {
		return nil, domain.ErrNoDensityFactors
	}
	if layout == nil || len(layout.Regions) == 0 {
		return nil, domain.ErrNotMasterDocument
	}

	tasks := make([]domain.ExportTask, 0, len(layout.Regions)*len(factors))
	for _, size := range layout.Sizes() {
		for _, factor := range factors {
			tasks = append(tasks, domain.ExportTask{
				Size:       size,
				Factor:     factor,
				RegionID:   layout.Regions[size],
				DPI:        domain.DefaultBaseDPI * factor,
				OutputPath: domain.OutputPath(root, layout.Context, size, factor, layout.IconName, "png"),
			})
		}
	}
	sortTasks(tasks)
	return tasks, nil
}

// PlanSizes builds whole-document tasks for a source that is not a master document.
func PlanSizes(name, iconContext string, sizes, factors []int, root string) ([]domain.ExportTask, error) {
	if len(factors) == 0 {
		return nil, domain.ErrNoDensityFactors
	}

	tasks := make([]domain.ExportTask, 0, len(sizes)*len(factors))
	for _, size := range sizes {
		if size <= 0 {
			return nil, domain.Classify(domain.ErrInvalidSize, zerr.With(zerr.New("size must be positive"), "size", size))
		}
		for _, factor := range factors {
			tasks = append(tasks, domain.ExportTask{
				Size:       size,
				Factor:     factor,
				OutputPath: domain.OutputPath(root, iconContext, size, factor, name, "png"),
			})
		}
	}
	sortTasks(tasks)
	return slices.CompactFunc(tasks, func(a, b domain.ExportTask) bool {
		return a.Size == b.Size && a.Factor == b.Factor
	}), nil
}

func sortTasks(tasks []domain.ExportTask) {
	slices.SortStableFunc(tasks, func(a, b domain.ExportTask) int {
		if c := cmp.Compare(a.Size, b.Size); c != 0 {
			return c
		}
		return cmp.Compare(a.Factor, b.Factor)
	})
}

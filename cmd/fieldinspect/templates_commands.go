package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"fieldinspect/internal/config"
	"fieldinspect/internal/inspection"
	"fieldinspect/internal/store"
)

// cropFile is the TOML layout accepted by "templates import".
type cropFile struct {
	Crop struct {
		ID   int64  `toml:"id"`
		Name string `toml:"name"`
	} `toml:"crop"`
	Stages []struct {
		Name                    string `toml:"name"`
		Order                   int    `toml:"order"`
		Required                bool   `toml:"required"`
		PeriodAfterPlantingDays *int   `toml:"period_after_planting_days"`
	} `toml:"stages"`
}

func loadCropFile(path string) (store.Crop, []inspection.StageTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Crop{}, nil, fmt.Errorf("read crop file: %w", err)
	}
	var file cropFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return store.Crop{}, nil, fmt.Errorf("parse crop file %s: %w", path, err)
	}
	if file.Crop.ID <= 0 || strings.TrimSpace(file.Crop.Name) == "" {
		return store.Crop{}, nil, fmt.Errorf("crop file %s: [crop] id and name are required", path)
	}
	templates := make([]inspection.StageTemplate, 0, len(file.Stages))
	for _, stage := range file.Stages {
		templates = append(templates, inspection.StageTemplate{
			StageName:               stage.Name,
			Order:                   stage.Order,
			Required:                stage.Required,
			PeriodAfterPlantingDays: stage.PeriodAfterPlantingDays,
		})
	}
	return store.Crop{ID: file.Crop.ID, Name: file.Crop.Name}, templates, nil
}

func newTemplatesCommand(ctx *commandContext) *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage crop stage templates",
	}
	templatesCmd.AddCommand(newTemplatesImportCommand(ctx))
	templatesCmd.AddCommand(newTemplatesListCommand(ctx))
	return templatesCmd
}

func newTemplatesImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.toml>...",
		Short: "Import crop stage templates from TOML files",
		Long: `Import crop stage templates from TOML files of the form:

  [crop]
  id = 1
  name = "Maize"

  [[stages]]
  name = "Pre-planting"
  order = 1
  required = true
  period_after_planting_days = 0

Stages are matched by name, so re-importing a file updates templates in place.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				for _, path := range args {
					crop, templates, err := loadCropFile(path)
					if err != nil {
						return err
					}
					stored, err := st.ImportCrop(cmdContext(cmd), crop, templates)
					if err != nil {
						return fmt.Errorf("import %s: %w", path, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Imported crop %d (%s) with %d stages\n", crop.ID, crop.Name, len(stored))
				}
				return nil
			})
		},
	}
}

func newTemplatesListCommand(ctx *commandContext) *cobra.Command {
	var cropID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List crops, or the stage templates of one crop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()
				if cropID == 0 {
					crops, err := st.ListCrops(cmdContext(cmd))
					if err != nil {
						return err
					}
					if len(crops) == 0 {
						fmt.Fprintln(out, "No crops imported")
						return nil
					}
					rows := make([][]string, 0, len(crops))
					for _, crop := range crops {
						rows = append(rows, []string{
							strconv.FormatInt(crop.ID, 10),
							crop.Name,
							strconv.Itoa(crop.TemplateCount),
						})
					}
					fmt.Fprintln(out, renderTable([]string{"ID", "Crop", "Stages"}, rows, []columnAlignment{alignRight, alignLeft, alignRight}))
					return nil
				}

				templates, err := st.StageTemplates(cmdContext(cmd), cropID)
				if err != nil {
					return err
				}
				if len(templates) == 0 {
					fmt.Fprintf(out, "No templates for crop %d\n", cropID)
					return nil
				}
				rows := make([][]string, 0, len(templates))
				for _, tpl := range templates {
					offset := "-"
					if tpl.PeriodAfterPlantingDays != nil {
						offset = strconv.Itoa(*tpl.PeriodAfterPlantingDays)
					}
					rows = append(rows, []string{
						strconv.FormatInt(tpl.ID, 10),
						strconv.Itoa(tpl.Order),
						tpl.StageName,
						yesNo(tpl.Required),
						offset,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Type", "Order", "Stage", "Required", "Days After Sowing"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&cropID, "crop", 0, "Show templates for this crop id")
	return cmd
}

package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillet-ai/skillet/pkg/skills"
)

// SkillName is the directory name of the spreadsheet skill.
const SkillName = "spreadsheet"

// ToolsFile is the tools_file value the spreadsheet manifest declares.
const ToolsFile = "scripts/tools.py"

// Toolset builds the spreadsheet toolset over a workbook.
func Toolset(w *Workbook) *skills.Toolset {
	return skills.NewToolset(
		skills.Entry{
			Name:        "list_sheets",
			Description: "List the sheets in the workbook.",
			Fn: func(ctx context.Context, _ map[string]any) (any, error) {
				return strings.Join(w.Sheets(), ", "), nil
			},
		},
		skills.Entry{
			Name:        "read_cell",
			Description: "Read a single cell, e.g. sheet=budget cell=B2.",
			Params: []skills.Param{
				{Name: "sheet", Type: "string", Description: "Sheet name"},
				{Name: "cell", Type: "string", Description: "Cell reference like B2"},
			},
			Fn: func(ctx context.Context, args map[string]any) (any, error) {
				sheet, cell, err := sheetAndRef(args, "cell")
				if err != nil {
					return nil, err
				}
				return w.ReadCell(sheet, cell)
			},
		},
		skills.Entry{
			Name:        "write_cell",
			Description: "Write a value into a single cell.",
			Params: []skills.Param{
				{Name: "sheet", Type: "string", Description: "Sheet name"},
				{Name: "cell", Type: "string", Description: "Cell reference like B2"},
				{Name: "value", Type: "string", Description: "Value to write"},
			},
			Fn: func(ctx context.Context, args map[string]any) (any, error) {
				sheet, cell, err := sheetAndRef(args, "cell")
				if err != nil {
					return nil, err
				}
				value := fmt.Sprintf("%v", args["value"])
				if err := w.WriteCell(sheet, cell, value); err != nil {
					return nil, err
				}
				return fmt.Sprintf("wrote %q to %s!%s", value, sheet, cell), nil
			},
		},
		skills.Entry{
			Name:        "read_range",
			Description: "Read a rectangular range, e.g. sheet=budget range=A1:C3.",
			Params: []skills.Param{
				{Name: "sheet", Type: "string", Description: "Sheet name"},
				{Name: "range", Type: "string", Description: "Range like A1:C3"},
			},
			Fn: func(ctx context.Context, args map[string]any) (any, error) {
				sheet, ref, err := sheetAndRef(args, "range")
				if err != nil {
					return nil, err
				}
				rows, err := w.ReadRange(sheet, ref)
				if err != nil {
					return nil, err
				}
				lines := make([]string, 0, len(rows))
				for _, row := range rows {
					lines = append(lines, strings.Join(row, "\t"))
				}
				return strings.Join(lines, "\n"), nil
			},
		},
	)
}

// Register wires the spreadsheet toolset into a skill registry under the
// standard skill name and tools file.
func Register(registry *skills.Registry, w *Workbook) {
	registry.Register(SkillName, ToolsFile, Toolset(w))
}

func sheetAndRef(args map[string]any, refKey string) (string, string, error) {
	sheet, _ := args["sheet"].(string)
	if sheet == "" {
		return "", "", fmt.Errorf("sheet is required")
	}
	ref, _ := args[refKey].(string)
	if ref == "" {
		return "", "", fmt.Errorf("%s is required", refKey)
	}
	return sheet, ref, nil
}

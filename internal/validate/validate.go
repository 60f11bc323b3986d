// Package validate checks that a file selection fits the declared format
// before any byte is read.
package validate

import (
	"fmt"
	"path"
	"strings"

	"github.com/simonhull/geolayer/internal/types"
)

// Item is one accepted upload and how to read it.
type Item struct {
	Upload types.Upload
	Role   types.Role
	Mode   types.Mode
}

// Plan is an accepted selection.
type Plan struct {
	Items  []Item
	Format types.Format
}

// Roles returns the roles of the plan in item order.
func (p *Plan) Roles() []types.Role {
	out := make([]types.Role, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.Role
	}
	return out
}

// IsArchive reports whether the plan is a single shapefile archive.
func (p *Plan) IsArchive() bool {
	return len(p.Items) == 1 && p.Items[0].Role == types.RoleArchive
}

// Check validates uploads against format.
//
// Rejections are *types.PipelineError: FormatNotChosen when no format is
// declared, ExtensionMismatch for everything else.
func Check(format types.Format, uploads []types.Upload) (*Plan, error) {
	if format == types.FormatNone {
		return nil, types.NewError(types.KindFormatNotChosen, "", "no map format selected", nil)
	}
	if len(format.Extensions()) == 0 {
		return nil, mismatch("", fmt.Sprintf("unsupported format %v", format))
	}
	if len(uploads) == 0 {
		return nil, mismatch("", "no files selected")
	}

	plan := &Plan{Format: format, Items: make([]Item, 0, len(uploads))}
	seen := make(map[types.Role]string, len(uploads))
	for _, u := range uploads {
		ext := types.Ext(u.Name)
		role := format.RoleFor(ext)
		if role == types.RoleUnknown {
			return nil, mismatch(u.Name, fmt.Sprintf("extension %q is not accepted for %v (want %s)",
				ext, format, expected(format)))
		}
		if prev, dup := seen[role]; dup {
			return nil, mismatch(u.Name, fmt.Sprintf("duplicate %v file (already have %s)", role, base(prev)))
		}
		seen[role] = u.Name
		plan.Items = append(plan.Items, Item{Upload: u, Role: role, Mode: role.Mode()})
	}

	switch format {
	case types.FormatGeoJSON, types.FormatKML:
		if len(uploads) != 1 {
			return nil, mismatch("", fmt.Sprintf("%v takes exactly one file, got %d", format, len(uploads)))
		}
	case types.FormatShapefile:
		if err := checkShapefile(seen, len(uploads)); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

func checkShapefile(seen map[types.Role]string, n int) error {
	if zip, ok := seen[types.RoleArchive]; ok {
		if n != 1 {
			return mismatch(zip, "a .zip archive must be selected on its own")
		}
		return nil
	}
	if n != 2 {
		return mismatch("", fmt.Sprintf("shapefile needs a .shp and a .dbf, got %d file(s)", n))
	}
	shp, hasShp := seen[types.RoleGeometry]
	dbf, hasDbf := seen[types.RoleAttributes]
	switch {
	case !hasShp:
		return mismatch(dbf, "missing .shp partner")
	case !hasDbf:
		return mismatch(shp, "missing .dbf partner")
	}
	return nil
}

func mismatch(name, reason string) error {
	return types.NewError(types.KindExtensionMismatch, base(name), reason, nil)
}

func expected(format types.Format) string {
	exts := format.Extensions()
	for i, e := range exts {
		exts[i] = "." + e
	}
	return strings.Join(exts, ", ")
}

func base(name string) string {
	if name == "" {
		return ""
	}
	return path.Base(strings.ReplaceAll(name, "\\", "/"))
}

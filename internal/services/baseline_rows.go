package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/modules/reconciliation"
	"github.com/yungbote/tenderbridge-backend/internal/normalization"
)

type baselineRows struct {
	Groups   []*types.WbsGroup
	Catalog  []*types.CatalogItem
	Items    []*types.EstimateItem
	Warnings []string
}

// buildBaselineRows maps importer string ids onto fresh uuids. Every item
// ends up linked to exactly one catalog entry: by catalog_id, else by
// normalized code within the payload catalog, else a synthesized entry.
// EstimateID is left for the aggregate to fill in.
func buildBaselineRows(p *types.ImportPayload, newID reconciliation.IDFunc, now time.Time) baselineRows {
	if newID == nil {
		newID = uuid.New
	}
	out := baselineRows{Warnings: []string{}}
	warn := func(format string, args ...any) {
		out.Warnings = append(out.Warnings, fmt.Sprintf(format, args...))
	}

	groupIDs := make(map[string]uuid.UUID, len(p.Groups))
	for _, g := range p.Groups {
		ext := strings.TrimSpace(g.ID)
		if _, dup := groupIDs[ext]; dup {
			warn("duplicate group id %q skipped", ext)
			continue
		}
		groupIDs[ext] = newID()
	}
	seenGroup := map[string]bool{}
	for _, g := range p.Groups {
		ext := strings.TrimSpace(g.ID)
		if seenGroup[ext] {
			continue
		}
		seenGroup[ext] = true
		row := &types.WbsGroup{
			ID:          groupIDs[ext],
			ExternalID:  ext,
			Code:        strings.TrimSpace(g.Code),
			Description: g.Description,
			Level:       g.Level,
			CreatedAt:   now,
		}
		if parent := strings.TrimSpace(g.ParentID); parent != "" {
			if pid, ok := groupIDs[parent]; ok && parent != ext {
				row.ParentID = &pid
			} else {
				warn("unknown parent group %q on group %q", parent, ext)
			}
		}
		out.Groups = append(out.Groups, row)
	}

	catalogByExt := make(map[string]*types.CatalogItem, len(p.Catalog))
	catalogByCode := map[string]*types.CatalogItem{}
	for _, c := range p.Catalog {
		ext := strings.TrimSpace(c.ID)
		if _, dup := catalogByExt[ext]; dup {
			warn("duplicate catalog id %q skipped", ext)
			continue
		}
		if c.Price < 0 {
			warn("negative price on catalog %q", ext)
		}
		gids := make([]uuid.UUID, 0, len(c.GroupIDs))
		for _, gid := range c.GroupIDs {
			mapped, ok := groupIDs[strings.TrimSpace(gid)]
			if !ok {
				warn("unknown group %q on catalog %q", gid, ext)
				continue
			}
			gids = append(gids, mapped)
		}
		row := &types.CatalogItem{
			ID:              newID(),
			ExternalID:      ext,
			Code:            strings.TrimSpace(c.Code),
			Description:     c.Description,
			LongDescription: c.LongDescription,
			Unit:            strings.TrimSpace(c.Unit),
			UnitPrice:       c.Price,
			GroupIDs:        types.UUIDListJSON(gids),
			CreatedAt:       now,
		}
		catalogByExt[ext] = row
		if code := normalization.NormalizeCode(row.Code); code != "" {
			if _, taken := catalogByCode[code]; !taken {
				catalogByCode[code] = row
			}
		}
		out.Catalog = append(out.Catalog, row)
	}

	for i, it := range p.Estimate.Items {
		rowNum := i + 1
		var cat *types.CatalogItem
		if ext := strings.TrimSpace(it.CatalogID); ext != "" {
			if c, ok := catalogByExt[ext]; ok {
				cat = c
			} else {
				warn("unknown catalog id %q on item %d", ext, rowNum)
			}
		}
		code := strings.TrimSpace(it.Code)
		if cat == nil && code != "" {
			cat = catalogByCode[normalization.NormalizeCode(code)]
		}
		if cat == nil {
			cat = synthesizeCatalog(it, newID(), now)
			if nc := normalization.NormalizeCode(cat.Code); nc != "" {
				catalogByCode[nc] = cat
			}
			out.Catalog = append(out.Catalog, cat)
			warn("missing catalog entry for item %d; synthesized from the row", rowNum)
		}
		if it.Quantity < 0 {
			warn("negative quantity on item %d", rowNum)
		}

		item := &types.EstimateItem{
			ID:            newID(),
			CatalogItemID: cat.ID,
			Progressive:   copyIntPtr(it.Progressive),
			ExternalID:    strings.TrimSpace(it.ID),
			Code:          firstNonEmpty(code, cat.Code),
			Description:   firstNonEmpty(it.Description, cat.Description),
			Unit:          firstNonEmpty(strings.TrimSpace(it.Unit), cat.Unit),
			Quantity:      it.Quantity,
			UnitPrice:     copyFloatPtr(it.UnitPrice),
			CreatedAt:     now,
		}
		if it.Amount != nil {
			item.Amount = *it.Amount
		} else {
			price := item.UnitPrice
			if price == nil {
				cp := cat.UnitPrice
				price = &cp
			}
			item.Amount = reconciliation.LineAmount(it.Quantity, price)
		}
		out.Items = append(out.Items, item)
	}
	return out
}

func synthesizeCatalog(it types.ItemPayload, id uuid.UUID, now time.Time) *types.CatalogItem {
	price := 0.0
	if it.UnitPrice != nil {
		price = *it.UnitPrice
	}
	return &types.CatalogItem{
		ID:              id,
		Code:            strings.TrimSpace(it.Code),
		Description:     it.Description,
		LongDescription: it.LongDescription,
		Unit:            strings.TrimSpace(it.Unit),
		UnitPrice:       price,
		GroupIDs:        types.UUIDListJSON(nil),
		CreatedAt:       now,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyFloatPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

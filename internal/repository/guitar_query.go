package repository

import (
	"fmt"
	"strings"

	"github.com/bondst/guitarvault/internal/models"
)

const guitarColumns = "id, brand, model, type, year, condition, color, price, pickup_location, description, status, image_url, image_urls, created_at, updated_at"

const guitarOrder = " ORDER BY created_at ASC, id ASC"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildGuitarQuery translates filter into a SELECT over guitars. A search string yields an
// OR of case-insensitive substring matches and ignores structured criteria; otherwise every
// supplied criterion becomes one ANDed predicate.
func buildGuitarQuery(filter models.GuitarFilter) (string, []interface{}) {
	base := "SELECT " + guitarColumns + " FROM guitars"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		conditions = append(conditions, "(brand ILIKE $1 OR model ILIKE $1 OR color ILIKE $1 OR description ILIKE $1)")
		return base + " WHERE " + conditions[0] + guitarOrder, args
	}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Brand != nil {
		args = append(args, *filter.Brand)
		conditions = append(conditions, fmt.Sprintf("brand = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		conditions = append(conditions, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}

	if len(conditions) > 0 {
		base += " WHERE " + strings.Join(conditions, " AND ")
	}
	return base + guitarOrder, args
}

// buildGuitarUpdate renders the SET clause for patch. ok is false when nothing changes.
func buildGuitarUpdate(id string, patch models.GuitarPatch, updatedAt interface{}) (string, []interface{}, bool) {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Brand != nil {
		set("brand", *patch.Brand)
	}
	if patch.Model != nil {
		set("model", *patch.Model)
	}
	if patch.Type != nil {
		set("type", string(*patch.Type))
	}
	if patch.Year != nil {
		set("year", *patch.Year)
	}
	if patch.Condition != nil {
		set("condition", string(*patch.Condition))
	}
	if patch.Color != nil {
		set("color", *patch.Color)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.PickupLocation != nil {
		set("pickup_location", *patch.PickupLocation)
	}
	if patch.Description != nil {
		set("description", nullable(*patch.Description))
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.ImageURL != nil {
		set("image_url", nullable(*patch.ImageURL))
	}
	if patch.ImageURLs != nil {
		set("image_urls", stringArray(patch.ImageURLs))
	}
	if len(sets) == 0 {
		return "", nil, false
	}

	set("updated_at", updatedAt)
	args = append(args, id)
	query := fmt.Sprintf("UPDATE guitars SET %s WHERE id = $%d RETURNING %s", strings.Join(sets, ", "), len(args), guitarColumns)
	return query, args, true
}

func nullable(value string) interface{} {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.TrimSpace(value)
}

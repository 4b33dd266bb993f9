package catalog

import "github.com/xelth-com/loadboard/internal/models"

// Default is the built-in catalog used until one is uploaded
func Default() []models.Product {
	return []models.Product{
		{Category: "Wall", RValue: "2.0", NewCode: "2006093", OldCode: "901217", PacksPerBale: 5, Width: "430"},
		{Category: "Wall", RValue: "2.0", NewCode: "2006094", OldCode: "901218", PacksPerBale: 5, Width: "580"},
		{Category: "Wall", RValue: "2.0HD", NewCode: "4006279", OldCode: "900210", PacksPerBale: 6, Width: "430"},
		{Category: "Wall", RValue: "2.0HD", NewCode: "4006280", OldCode: "900211", PacksPerBale: 6, Width: "580"},
		{Category: "Wall", RValue: "2.0HD", NewCode: "2006281", OldCode: "900213", PacksPerBale: 6, Width: "600"},
		{Category: "Ceiling", RValue: "2.5", NewCode: "2006098", OldCode: "901254", PacksPerBale: 6, Width: "430"},
		{Category: "Ceiling", RValue: "2.5", NewCode: "2006099", OldCode: "901255", PacksPerBale: 6, Width: "580"},
		{Category: "Wall", RValue: "2.5HD", NewCode: "2006071", OldCode: "900253", PacksPerBale: 5, Width: "430"},
	}
}

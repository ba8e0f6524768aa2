package catalog

import "github.com/labwise/lab-api/internal/model"

func genderRanges(maleMin, maleMax, femaleMin, femaleMax float64) map[model.Gender]model.Range {
	return map[model.Gender]model.Range{
		model.GenderMale:   {Min: maleMin, Max: maleMax},
		model.GenderFemale: {Min: femaleMin, Max: femaleMax},
	}
}

func critical(low, high float64) *model.CriticalRange {
	return &model.CriticalRange{Low: low, High: high}
}

// defaultParameters is the built-in catalog. Reference intervals follow
// common adult laboratory conventions in SI units.
var defaultParameters = []model.ParameterDefinition{
	{
		Code:         "hemoglobin",
		Name:         "Hemoglobin",
		Unit:         "g/L",
		Group:        model.GroupHematology,
		Reference:    model.Range{Min: 120, Max: 160},
		GenderRanges: genderRanges(130, 160, 120, 150),
		Critical:     critical(70, 200),
	},
	{
		Code:         "rbc",
		Name:         "Red blood cells",
		Unit:         "10^12/L",
		Group:        model.GroupHematology,
		Reference:    model.Range{Min: 4.0, Max: 5.5},
		GenderRanges: genderRanges(4.3, 5.7, 3.8, 5.1),
		Critical:     critical(2.0, 7.0),
	},
	{
		Code:      "wbc",
		Name:      "White blood cells",
		Unit:      "10^9/L",
		Group:     model.GroupHematology,
		Reference: model.Range{Min: 4.0, Max: 9.0},
		Critical:  critical(1.0, 30.0),
	},
	{
		Code:      "platelets",
		Name:      "Platelets",
		Unit:      "10^9/L",
		Group:     model.GroupHematology,
		Reference: model.Range{Min: 180, Max: 320},
		Critical:  critical(50, 1000),
	},
	{
		Code:         "hematocrit",
		Name:         "Hematocrit",
		Unit:         "%",
		Group:        model.GroupHematology,
		Reference:    model.Range{Min: 36, Max: 48},
		GenderRanges: genderRanges(39, 49, 35, 45),
		Critical:     critical(20, 60),
	},
	{
		Code:         "esr",
		Name:         "ESR",
		Unit:         "mm/h",
		Group:        model.GroupHematology,
		Reference:    model.Range{Min: 2, Max: 15},
		GenderRanges: genderRanges(2, 10, 2, 15),
		Critical:     critical(0, 100),
	},
	{
		Code:      "glucose",
		Name:      "Glucose",
		Unit:      "mmol/L",
		Group:     model.GroupBiochemistry,
		Reference: model.Range{Min: 3.9, Max: 5.9},
		Critical:  critical(2.5, 25.0),
	},
	{
		Code:         "creatinine",
		Name:         "Creatinine",
		Unit:         "umol/L",
		Group:        model.GroupBiochemistry,
		Reference:    model.Range{Min: 62, Max: 106},
		GenderRanges: genderRanges(80, 115, 53, 97),
		Critical:     critical(30, 500),
	},
	{
		Code:      "urea",
		Name:      "Urea",
		Unit:      "mmol/L",
		Group:     model.GroupBiochemistry,
		Reference: model.Range{Min: 2.5, Max: 8.3},
		Critical:  critical(1.0, 50.0),
	},
	{
		Code:      "total_bilirubin",
		Name:      "Total bilirubin",
		Unit:      "umol/L",
		Group:     model.GroupLiver,
		Reference: model.Range{Min: 3.4, Max: 20.5},
		Critical:  critical(1.0, 200),
	},
	{
		Code:         "alt",
		Name:         "ALT",
		Unit:         "U/L",
		Group:        model.GroupLiver,
		Reference:    model.Range{Min: 10, Max: 40},
		GenderRanges: genderRanges(10, 41, 7, 31),
		Critical:     critical(1, 500),
	},
	{
		Code:         "ast",
		Name:         "AST",
		Unit:         "U/L",
		Group:        model.GroupLiver,
		Reference:    model.Range{Min: 10, Max: 40},
		GenderRanges: genderRanges(10, 40, 10, 32),
		Critical:     critical(1, 500),
	},
	{
		Code:      "cholesterol",
		Name:      "Total cholesterol",
		Unit:      "mmol/L",
		Group:     model.GroupBiochemistry,
		Reference: model.Range{Min: 3.0, Max: 5.2},
		Critical:  critical(1.0, 10.0),
	},
	{
		Code:      "total_protein",
		Name:      "Total protein",
		Unit:      "g/L",
		Group:     model.GroupBiochemistry,
		Reference: model.Range{Min: 65, Max: 85},
		Critical:  critical(40, 120),
	},
	{
		Code:      "albumin",
		Name:      "Albumin",
		Unit:      "g/L",
		Group:     model.GroupBiochemistry,
		Reference: model.Range{Min: 35, Max: 50},
		Critical:  critical(20, 70),
	},
	{
		Code:      "ldh",
		Name:      "LDH",
		Unit:      "U/L",
		Group:     model.GroupBiochemistry,
		Reference: model.Range{Min: 125, Max: 220},
		Critical:  critical(50, 1000),
	},
	{
		Code:         "alkaline_phosphatase",
		Name:         "Alkaline phosphatase",
		Unit:         "U/L",
		Group:        model.GroupLiver,
		Reference:    model.Range{Min: 40, Max: 130},
		GenderRanges: genderRanges(40, 130, 35, 105),
		Critical:     critical(10, 500),
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return MustNew(defaultParameters)
}

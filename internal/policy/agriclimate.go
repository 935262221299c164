package policy

// AgriClimate returns the default policy for the climate-impact
// agriculture dataset. Identifier columns drop rows they cannot repair,
// categorical columns take the mode, event counts take the median and the
// remaining measurements take the mean. Bounded quantities (percentages,
// indexes, calendar years, event counts) clip to their valid ranges;
// open-ended measurements use IQR fences.
func AgriClimate() Set {
	return Set{
		Default:         Mean,
		UnlistedNumeric: None,
		Columns: map[string]ColumnRule{
			"Year":    {Missing: Drop, Outliers: Clip, Min: 1990, Max: 2024},
			"Country": {Missing: Drop},

			"Region":                {Missing: Mode},
			"Crop_Type":             {Missing: Mode},
			"Adaptation_Strategies": {Missing: Mode},

			"Extreme_Weather_Events": {Missing: Median, Outliers: Clip, Min: 0, Max: 10},

			"Average_Temperature_C":       {Missing: Mean, Outliers: IQR},
			"Total_Precipitation_mm":      {Missing: Mean, Outliers: IQR},
			"CO2_Emissions_MT":            {Missing: Mean, Outliers: IQR},
			"Crop_Yield_MT_per_HA":        {Missing: Mean, Outliers: IQR},
			"Irrigation_Access_%":         {Missing: Mean, Outliers: Clip, Min: 0, Max: 100},
			"Pesticide_Use_KG_per_HA":     {Missing: Mean, Outliers: IQR},
			"Fertilizer_Use_KG_per_HA":    {Missing: Mean, Outliers: IQR},
			"Soil_Health_Index":           {Missing: Mean, Outliers: Clip, Min: 0, Max: 100},
			"Economic_Impact_Million_USD": {Missing: Mean, Outliers: IQR},
		},
	}
}

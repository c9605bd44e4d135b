package services

import "strings"

const maxAirportSuggestions = 20

// Airport is an entry of the suggestion catalogue.
type Airport struct {
	City        string `json:"city"`
	CityCode    string `json:"cityCode"`
	Airport     string `json:"airport"`
	AirportCode string `json:"airportCode"`
	Hot         bool   `json:"hot"`
}

var airportCatalogue = []Airport{
	{City: "Shanghai", CityCode: "SHA", Airport: "Pudong International Airport", AirportCode: "PVG", Hot: true},
	{City: "Shanghai", CityCode: "SHA", Airport: "Hongqiao International Airport", AirportCode: "SHA", Hot: true},
	{City: "Beijing", CityCode: "BJS", Airport: "Capital International Airport", AirportCode: "PEK", Hot: true},
	{City: "Beijing", CityCode: "BJS", Airport: "Daxing International Airport", AirportCode: "PKX", Hot: true},
	{City: "Guangzhou", CityCode: "CAN", Airport: "Baiyun International Airport", AirportCode: "CAN", Hot: true},
	{City: "Shenzhen", CityCode: "SZX", Airport: "Bao'an International Airport", AirportCode: "SZX"},
	{City: "Chengdu", CityCode: "CTU", Airport: "Shuangliu International Airport", AirportCode: "CTU"},
	{City: "Chongqing", CityCode: "CKG", Airport: "Jiangbei International Airport", AirportCode: "CKG"},
}

// AirportService answers airport autocomplete queries.
type AirportService struct {
	catalogue []Airport
}

// NewAirportService creates an AirportService over the built-in catalogue.
func NewAirportService() *AirportService {
	return &AirportService{catalogue: airportCatalogue}
}

// Suggest matches query case-insensitively against city, city code,
// airport name and airport code. The result is never nil.
func (s *AirportService) Suggest(query string) []Airport {
	kw := strings.ToLower(strings.TrimSpace(query))
	out := make([]Airport, 0)
	if kw == "" {
		return out
	}

	for _, a := range s.catalogue {
		if strings.Contains(strings.ToLower(a.City), kw) ||
			strings.Contains(strings.ToLower(a.CityCode), kw) ||
			strings.Contains(strings.ToLower(a.Airport), kw) ||
			strings.Contains(strings.ToLower(a.AirportCode), kw) {
			out = append(out, a)
			if len(out) == maxAirportSuggestions {
				break
			}
		}
	}
	return out
}

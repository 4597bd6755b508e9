package service

import (
	"encoding/json"
	"fmt"

	"evinburada/internal/model"
	"evinburada/internal/utils"

	"github.com/xeipuuv/gojsonschema"
)

// searchHomesSchema describes the search_homes arguments. It is sent to the
// hosted model as the tool signature and reused to validate what comes back.
var searchHomesSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"locations": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Semt veya mahalle isimleri (ör: Beylikdüzü, Adnan Kahveci)",
		},
		"province": map[string]interface{}{
			"type":        "string",
			"description": "İl (ör: İstanbul)",
		},
		"district": map[string]interface{}{
			"type":        "string",
			"description": "İlçe (ör: Kadıköy)",
		},
		"neighborhoods": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Mahalle isimleri (ör: Moda)",
		},
		"dealType": map[string]interface{}{
			"type":        "string",
			"enum":        []string{string(model.DealRental), string(model.DealSale), string(model.DealDailyRental)},
			"description": "Kiralık, Satılık veya Günlük Kiralık",
		},
		"roomCount": map[string]interface{}{
			"type":        "string",
			"pattern":     `^\d\+\d$`,
			"description": "Oda sayısı (ör: 2+1, 3+1)",
		},
		"inSite": map[string]interface{}{
			"type":        "boolean",
			"description": "Site içerisinde mi?",
		},
		"minPrice": map[string]interface{}{
			"type":        "integer",
			"minimum":     0,
			"description": "En düşük fiyat (TL)",
		},
		"maxPrice": map[string]interface{}{
			"type":        "integer",
			"minimum":     0,
			"description": "En yüksek fiyat (TL)",
		},
	},
	"additionalProperties": false,
}

// decodeSearchHomesArgs parses raw tool-call arguments, validates them against
// searchHomesSchema and applies the checks a schema cannot express.
func decodeSearchHomesArgs(raw string) (*model.SearchFilters, error) {
	if raw == "" {
		raw = "{}"
	}

	var doc map[string]interface{}
	if err := utils.ParseAIJSON(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(searchHomesSchema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("arguments failed validation: %v", errs)
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode arguments: %w", err)
	}
	var filters model.SearchFilters
	if err := json.Unmarshal(normalized, &filters); err != nil {
		return nil, fmt.Errorf("failed to decode arguments: %w", err)
	}

	if filters.MinPrice != nil && filters.MaxPrice != nil && *filters.MinPrice > *filters.MaxPrice {
		return nil, fmt.Errorf("minPrice %d exceeds maxPrice %d", *filters.MinPrice, *filters.MaxPrice)
	}
	return &filters, nil
}

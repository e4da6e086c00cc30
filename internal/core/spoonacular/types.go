package spoonacular

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Value 可能是字串或數字的欄位，例如 servings、readyInMinutes
type Value struct {
	text  string
	valid bool
}

// NewValue 由字串建立值
func NewValue(s string) Value {
	return Value{text: s, valid: s != ""}
}

// UnmarshalJSON 接受字串、數字或 null
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = NewValue(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("value must be a string or number: %w", err)
	}
	*v = NewValue(n.String())
	return nil
}

// MarshalJSON 未知時輸出 null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(v.text, 64); err == nil {
		return []byte(v.text), nil
	}
	return json.Marshal(v.text)
}

// Known 是否有值
func (v Value) Known() bool {
	return v.valid
}

// String 未知時回傳 N/A
func (v Value) String() string {
	if !v.valid {
		return "N/A"
	}
	return v.text
}

// Candidate 搜尋結果中的候選食譜
type Candidate struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Ingredient 食材
type Ingredient struct {
	Original string `json:"original"`
}

// RecipeInformation /recipes/{id}/information 響應
type RecipeInformation struct {
	ID                  int          `json:"id"`
	Title               string       `json:"title"`
	Servings            Value        `json:"servings"`
	ReadyInMinutes      Value        `json:"readyInMinutes"`
	SourceURL           string       `json:"sourceUrl"`
	ExtendedIngredients []Ingredient `json:"extendedIngredients"`
	Instructions        string       `json:"instructions"`
	HealthScore         *float64     `json:"healthScore"`
}

// NutritionWidget /recipes/{id}/nutritionWidget.json 響應
type NutritionWidget struct {
	Calories Value `json:"calories"`
	Carbs    Value `json:"carbs"`
	Fat      Value `json:"fat"`
	Protein  Value `json:"protein"`
}

// Shape 已知的候選清單響應格式
type Shape string

const (
	ShapeResults Shape = "results" // complexSearch
	ShapeRecipes Shape = "recipes" // random
	ShapeArray   Shape = "array"   // findByIngredients
)

// DecodeCandidates 將已知格式統一為候選清單，未知格式回傳錯誤
func DecodeCandidates(body []byte) ([]Candidate, Shape, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, "", fmt.Errorf("empty body")
	}

	if body[0] == '[' {
		var list []Candidate
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, "", err
		}
		return list, ShapeArray, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, "", err
	}
	for _, shape := range []Shape{ShapeResults, ShapeRecipes} {
		raw, ok := envelope[string(shape)]
		if !ok {
			continue
		}
		var list []Candidate
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, shape, nil
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, "", fmt.Errorf("decode %s: %w", shape, err)
		}
		return list, shape, nil
	}
	return nil, "", fmt.Errorf("unknown response shape")
}

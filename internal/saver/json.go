package saver

import (
	"encoding/json"
	"os"

	"emacross/internal/model"
)

// JSONSaver writes trades as an indented JSON array.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(trades []model.Trade, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if trades == nil {
		trades = []model.Trade{}
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(trades); err != nil {
		return err
	}
	return f.Close()
}

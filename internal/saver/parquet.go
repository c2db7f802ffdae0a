package saver

import (
	"github.com/parquet-go/parquet-go"

	"emacross/internal/model"
)

// ParquetSaver writes trades as Parquet.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(trades []model.Trade, path string) error {
	return parquet.WriteFile(path, trades)
}

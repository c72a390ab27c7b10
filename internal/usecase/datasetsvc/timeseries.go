package datasetsvc

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/sir_venger/dataset_lite/internal/models"
)

// parseTimeSeries разбирает CSV-подобный временной ряд: первая строка —
// заголовок и всегда отбрасывается, пустые строки не дают рядов.
// Число колонок не проверяется, строки разной ширины проходят как есть.
func parseTimeSeries(r io.Reader) ([]models.Row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	rows := []models.Row{}
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells := strings.Split(line, ",")
		row := make(models.Row, 0, len(cells))
		for _, cell := range cells {
			row = append(row, parseCell(cell))
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// parseCell типизирует ячейку: с десятичной точкой — float, иначе int;
// если число не распозналось, исходная строка остаётся как есть.
func parseCell(cell string) any {
	if strings.Contains(cell, ".") {
		if f, err := strconv.ParseFloat(cell, 64); err == nil {
			return f
		}
		return cell
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return n
	}
	return cell
}

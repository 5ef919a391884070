package importer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Row 一条待导入记录：字段名 → 原始值。
// CSV 来源的值全是字符串；JSON 来源保留解码后的原生类型，由 decodeRow 统一收敛。
type Row map[string]any

// ParseCSV 以首行为表头解析整个 payload。
// 行数不一致等格式错误属于整体拒绝，不进入逐行隔离。
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("csv payload is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			row[col] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseJSON 要求顶层是对象数组；顶层不是数组时整体拒绝（区别于单行错误）。
func ParseJSON(payload []byte) ([]Row, error) {
	var rows []Row
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("import payload must be a JSON array of objects")
	}
	return rows, nil
}

// decodedItem 是一行通过类型收敛后的菜单项字段。
type decodedItem struct {
	Name         string
	CategoryID   uint
	Price        float64
	Description  string
	IsAvailable  bool
	IsVegetarian bool
	PrepMinutes  *int
}

// decodeRow 把松散类型的行收敛为领域类型。
// 解码失败与后续持久化失败分开上报，错误信息里能看出是哪一类。
func decodeRow(row Row) (decodedItem, error) {
	item := decodedItem{IsAvailable: true}

	name, err := stringField(row, "name", true)
	if err != nil {
		return decodedItem{}, err
	}
	item.Name = name

	categoryID, err := intField(row, "category_id", true)
	if err != nil {
		return decodedItem{}, err
	}
	if categoryID <= 0 {
		return decodedItem{}, fmt.Errorf("category_id must be > 0")
	}
	item.CategoryID = uint(categoryID)

	price, err := floatField(row, "price", true)
	if err != nil {
		return decodedItem{}, err
	}
	if price < 0 {
		return decodedItem{}, fmt.Errorf("price must be >= 0")
	}
	item.Price = price

	if desc, err := stringField(row, "description", false); err == nil {
		item.Description = desc
	}

	avail, err := boolField(row, "is_available", true)
	if err != nil {
		return decodedItem{}, err
	}
	item.IsAvailable = avail

	veg, err := boolField(row, "is_vegetarian", false)
	if err != nil {
		return decodedItem{}, err
	}
	item.IsVegetarian = veg

	if raw, ok := row["preparation_time_minutes"]; ok && !isEmpty(raw) {
		minutes, err := intField(row, "preparation_time_minutes", true)
		if err != nil {
			return decodedItem{}, err
		}
		item.PrepMinutes = &minutes
	}

	return item, nil
}

// snapshot 把原始行转成字符串映射，附在失败记录里便于排查。
func (r Row) snapshot() map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		if isEmpty(v) {
			continue
		}
		switch x := v.(type) {
		case string:
			out[k] = x
		case float64:
			out[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(x)
		default:
			out[k] = fmt.Sprintf("%v", x)
		}
	}
	return out
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func stringField(row Row, key string, required bool) (string, error) {
	v, ok := row[key]
	if !ok || isEmpty(v) {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string", key)
	}
	return strings.TrimSpace(s), nil
}

func intField(row Row, key string, required bool) (int, error) {
	v, ok := row[key]
	if !ok || isEmpty(v) {
		if required {
			return 0, fmt.Errorf("missing required field %q", key)
		}
		return 0, nil
	}
	switch x := v.(type) {
	case float64:
		if x != float64(int(x)) {
			return 0, fmt.Errorf("field %q must be an integer", key)
		}
		return int(x), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("field %q must be an integer, got %q", key, x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("field %q must be an integer", key)
	}
}

func floatField(row Row, key string, required bool) (float64, error) {
	v, ok := row[key]
	if !ok || isEmpty(v) {
		if required {
			return 0, fmt.Errorf("missing required field %q", key)
		}
		return 0, nil
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("field %q must be a number, got %q", key, x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("field %q must be a number", key)
	}
}

func boolField(row Row, key string, fallback bool) (bool, error) {
	v, ok := row[key]
	if !ok || isEmpty(v) {
		return fallback, nil
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, fmt.Errorf("field %q must be a boolean, got %q", key, x)
		}
		return b, nil
	default:
		return false, fmt.Errorf("field %q must be a boolean", key)
	}
}

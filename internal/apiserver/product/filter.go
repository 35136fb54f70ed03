package product

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"trenzy-shop/internal/shared/model"
	"trenzy-shop/internal/shared/storagetypes"
)

// ErrInvalidQuery 查询参数格式错误
var ErrInvalidQuery = errors.New("invalid query")

// 支持的查询参数
const (
	ParamRating    = "rating"
	ParamCategory  = "category"
	ParamPrice     = "price"
	ParamFlashSale = "flashSale"
	ParamTopRated  = "topRated"
)

// ratingOperators rating 参数可选的运算符前缀，例如 rating=lte:4
var ratingOperators = map[string]storagetypes.Operator{
	"eq":  storagetypes.OpEq,
	"lt":  storagetypes.OpLt,
	"lte": storagetypes.OpLte,
	"gt":  storagetypes.OpGt,
	"gte": storagetypes.OpGte,
}

// BuildFilter 将查询参数转换为商品过滤条件
//
// 未识别的参数被忽略；没有任何可识别参数时返回空过滤器（匹配全部）。
// 数值格式错误返回 ErrInvalidQuery。
func BuildFilter(values url.Values) (storagetypes.Filter, error) {
	var f storagetypes.Filter

	if raw, ok := lookup(values, ParamRating); ok {
		op, n, err := parseRating(raw)
		if err != nil {
			return storagetypes.Filter{}, err
		}
		if op == storagetypes.OpEq {
			f = f.Eq(model.ProductFieldRating, n)
		} else {
			f = f.Compare(model.ProductFieldRating, op, n)
		}
	}

	if raw, ok := lookup(values, ParamCategory); ok {
		f = f.Eq(model.ProductFieldCategory, raw)
	}

	if raw, ok := lookup(values, ParamPrice); ok {
		lo, hi, err := parsePriceRange(raw)
		if err != nil {
			return storagetypes.Filter{}, err
		}
		f = f.Between(model.ProductFieldPrice, lo, hi)
	}

	if raw, ok := lookup(values, ParamFlashSale); ok {
		f = f.Eq(model.ProductFieldFlashSale, raw == "true")
	}
	if raw, ok := lookup(values, ParamTopRated); ok {
		f = f.Eq(model.ProductFieldTopRated, raw == "true")
	}

	return f, nil
}

// FlashSaleFilter flashSale == true
func FlashSaleFilter() storagetypes.Filter {
	return storagetypes.Filter{}.Eq(model.ProductFieldFlashSale, true)
}

// TopRatedFilter topRated == true
func TopRatedFilter() storagetypes.Filter {
	return storagetypes.Filter{}.Eq(model.ProductFieldTopRated, true)
}

// lookup 参数存在且非空时返回第一个值
func lookup(values url.Values, key string) (string, bool) {
	v := values.Get(key)
	return v, v != ""
}

// parseRating 解析 "4.5" 或 "lte:4"
func parseRating(raw string) (storagetypes.Operator, float64, error) {
	op := storagetypes.OpEq
	num := raw
	if prefix, rest, ok := strings.Cut(raw, ":"); ok {
		o, known := ratingOperators[prefix]
		if !known {
			return "", 0, fmt.Errorf("%w: unknown rating operator %q", ErrInvalidQuery, prefix)
		}
		op, num = o, rest
	}

	n, err := parseNumber(num)
	if err != nil {
		return "", 0, fmt.Errorf("%w: rating %q is not a number", ErrInvalidQuery, raw)
	}
	return op, n, nil
}

// parsePriceRange 解析 "min-max"，两端必填、非负且 min <= max
func parsePriceRange(raw string) (float64, float64, error) {
	rawLo, rawHi, ok := strings.Cut(raw, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: price must be min-max, got %q", ErrInvalidQuery, raw)
	}
	lo, err := parseNumber(rawLo)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: price min %q is not a number", ErrInvalidQuery, rawLo)
	}
	hi, err := parseNumber(rawHi)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: price max %q is not a number", ErrInvalidQuery, rawHi)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("%w: price min %v exceeds max %v", ErrInvalidQuery, lo, hi)
	}
	return lo, hi, nil
}

// parseNumber 只接受有限的非负十进制数
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty number")
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errors.New("number must be finite")
	}
	if n < 0 {
		return 0, errors.New("number must not be negative")
	}
	return n, nil
}

// Package storagetypes 定义存储层共享数据类型
//
// 独立包，避免 storage 与各驱动之间循环导入
package storagetypes

// Operator 过滤条件运算符
type Operator string

const (
	OpEq    Operator = "eq"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpRange Operator = "range" // 闭区间 [Min, Max]
)

// IsComparison 是否为数值比较运算符
func (o Operator) IsComparison() bool {
	switch o {
	case OpLt, OpLte, OpGt, OpGte:
		return true
	}
	return false
}

// Condition 单个字段约束
//
// Value 仅支持 float64、string、bool；等值比较是类型严格的，
// 例如 bool true 不会匹配字符串 "true"。
type Condition struct {
	Field string
	Op    Operator
	Value any
	Min   float64
	Max   float64
}

// Filter 结构化查询条件，多个条件之间为 AND
// 零值 Filter 匹配全部记录
type Filter struct {
	Conditions []Condition
}

// IsEmpty 是否为无约束过滤器
func (f Filter) IsEmpty() bool {
	return len(f.Conditions) == 0
}

// Get 返回指定字段的条件
func (f Filter) Get(field string) (Condition, bool) {
	for _, c := range f.Conditions {
		if c.Field == field {
			return c, true
		}
	}
	return Condition{}, false
}

// Eq 追加等值条件
func (f Filter) Eq(field string, value any) Filter {
	return f.with(Condition{Field: field, Op: OpEq, Value: value})
}

// Compare 追加数值比较条件
func (f Filter) Compare(field string, op Operator, value float64) Filter {
	return f.with(Condition{Field: field, Op: op, Value: value})
}

// Between 追加闭区间条件
func (f Filter) Between(field string, lo, hi float64) Filter {
	return f.with(Condition{Field: field, Op: OpRange, Min: lo, Max: hi})
}

func (f Filter) with(c Condition) Filter {
	conds := make([]Condition, 0, len(f.Conditions)+1)
	conds = append(conds, f.Conditions...)
	return Filter{Conditions: append(conds, c)}
}

package mongostore

import (
	"fmt"

	"trenzy-shop/internal/shared/model"
	"trenzy-shop/internal/shared/storage"
	"trenzy-shop/internal/shared/storagetypes"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// filterToBSON 将 Filter 编译为 MongoDB 查询文档
//
// 空 Filter 编译为 {}，匹配全部文档。
// 字段名必须通过 storage.ValidField 校验，防止 $ 操作符注入。
func filterToBSON(filter storage.Filter) (bson.D, error) {
	query := bson.D{}
	for _, c := range filter.Conditions {
		if !storage.ValidField(c.Field) {
			return nil, fmt.Errorf("%w: %q", storage.ErrInvalidField, c.Field)
		}

		switch {
		case c.Op == storagetypes.OpEq:
			value := c.Value
			if c.Field == model.FieldID {
				hex, _ := c.Value.(string)
				oid, err := bson.ObjectIDFromHex(hex)
				if err != nil {
					return nil, fmt.Errorf("filter %s: %w", c.Field, err)
				}
				value = oid
			}
			query = append(query, bson.E{Key: c.Field, Value: value})

		case c.Op == storagetypes.OpRange:
			query = append(query, bson.E{Key: c.Field, Value: bson.D{
				{Key: "$gte", Value: c.Min},
				{Key: "$lte", Value: c.Max},
			}})

		case c.Op.IsComparison():
			query = append(query, bson.E{Key: c.Field, Value: bson.D{
				{Key: "$" + string(c.Op), Value: c.Value},
			}})

		default:
			return nil, fmt.Errorf("filter %s: unsupported operator %q", c.Field, c.Op)
		}
	}
	return query, nil
}

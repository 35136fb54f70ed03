package model

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// FieldID 文档主键字段（与 MongoDB 原生 _id 一致）
const FieldID = "_id"

// 商品文档中参与过滤的字段
const (
	ProductFieldPrice     = "price"
	ProductFieldRating    = "rating"
	ProductFieldCategory  = "category"
	ProductFieldFlashSale = "flashSale"
	ProductFieldTopRated  = "topRated"
)

// Document 调用方提交的任意 JSON 文档（商品、订单），按原样存储
type Document map[string]any

// ID 返回文档 _id，不存在时返回空字符串
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Clone 浅拷贝文档
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// WithoutID 返回去掉 _id 的浅拷贝（_id 只能由存储层分配）
func (d Document) WithoutID() Document {
	out := d.Clone()
	delete(out, FieldID)
	return out
}

// NewID 生成 24 位十六进制标识符
func NewID() string {
	return bson.NewObjectID().Hex()
}

// IsValidID 校验标识符格式（24 位十六进制）
func IsValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}

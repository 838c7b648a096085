package repository

import (
	"fmt"
	"strings"

	"github.com/ppec-inventory/internal/constants"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// RecordCodec 记录编码器
type RecordCodec interface {
	Ext() string
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// NewRecordCodec 根据格式名创建编码器
func NewRecordCodec(format string) (RecordCodec, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", constants.RecordFormatJSON:
		return jsonCodec{}, nil
	case constants.RecordFormatYAML, "yml":
		return yamlCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported record format: %s", format)
	}
}

type jsonCodec struct{}

func (jsonCodec) Ext() string { return constants.RecordExtJSON }

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

type yamlCodec struct{}

func (yamlCodec) Ext() string { return constants.RecordExtYAML }

func (yamlCodec) Marshal(v interface{}) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v interface{}) error {
	return yaml.Unmarshal(data, v)
}

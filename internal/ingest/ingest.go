// Package ingest 负责读取压缩 tick 文件目录并解析为原始 tick 表。
// 目录内每个 .gz 文件解析为一张表，结果按文件名为键。
package ingest

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"latency-arb-scanner/internal/core/model"
	"latency-arb-scanner/internal/util/fastparse"
)

// 必需的表头列名
const (
	colTimestamp = "Timestamp"
	colExchange  = "Exchange"
	colAction    = "Action"
	colSide      = "Side"
	colPrice     = "Price"
	colQuantity  = "Quantity"
)

// Reader tick 文件读取器
type Reader struct {
	// logger 日志
	logger *zap.Logger
}

// NewReader 创建 tick 文件读取器
func NewReader(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger}
}

// ReadDir 读取目录下所有 .gz tick 文件
// 返回: 文件名到 tick 表的映射；目录不存在或单个文件解析失败时返回错误。
func (r *Reader) ReadDir(dir string) (map[string]*model.TickTable, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("读取 tick 目录失败: %w", err)
	}

	tables := make(map[string]*model.TickTable)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".gz") {
			continue
		}
		table, err := r.readFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("解析 %s 失败: %w", entry.Name(), err)
		}
		tables[entry.Name()] = table
		r.logger.Info("tick 文件加载完成",
			zap.String("file", entry.Name()),
			zap.Int("rows", table.Len()))
	}

	return tables, nil
}

// readFile 解析单个 .gz tick 文件
func (r *Reader) readFile(path string) (*model.TickTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("解压失败: %w", err)
	}
	defer gz.Close()

	return Parse(gz)
}

// Parse 从分隔文本流解析 tick 表
// 首行为表头，必须包含 Timestamp/Exchange/Action/Side/Price/Quantity 列。
// 空白的价格/数量字段按缺失（NaN）处理，空白的交易所按缺失（空串）处理。
func Parse(in io.Reader) (*model.TickTable, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colTimestamp, colExchange, colAction, colSide, colPrice, colQuantity} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("表头缺少必需列: %s", required)
		}
	}

	table := &model.TickTable{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取数据行失败: %w", err)
		}

		field := func(name string) string {
			i := idx[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		ts, err := fastparse.ParseInt(field(colTimestamp))
		if err != nil {
			return nil, fmt.Errorf("非法时间戳 %q: %w", field(colTimestamp), err)
		}

		table.Rows = append(table.Rows, model.Tick{
			Timestamp: ts,
			Exchange:  field(colExchange),
			Action:    field(colAction),
			Side:      model.Side(field(colSide)),
			Price:     fastparse.OptionalFloat(field(colPrice)),
			Quantity:  fastparse.OptionalFloat(field(colQuantity)),
		})
	}

	return table, nil
}

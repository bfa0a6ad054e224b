// Package ingest tick 文件读取测试
package ingest

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"latency-arb-scanner/internal/core/model"
)

const sampleCSV = `Timestamp,Exchange,Action,Side,Price,Quantity
93000000,X,FQ,A,10.5,100
93000100,Y,FQ,B,11.25,
93000200,,IQ,A,,50
`

func TestParse(t *testing.T) {
	table, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse 失败: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("行数=%d, want 3", table.Len())
	}

	r0 := table.Rows[0]
	if r0.Timestamp != 93000000 || r0.Exchange != "X" || r0.Action != "FQ" {
		t.Fatalf("首行解析错误: %+v", r0)
	}
	if r0.Side != model.SideA || r0.Price != 10.5 || r0.Quantity != 100 {
		t.Fatalf("首行字段错误: %+v", r0)
	}

	// 空白数量按缺失处理
	if !model.IsMissing(table.Rows[1].Quantity) {
		t.Fatalf("空白数量应为 NaN")
	}
	// 空白交易所与价格按缺失处理
	r2 := table.Rows[2]
	if r2.Exchange != "" || !model.IsMissing(r2.Price) {
		t.Fatalf("空白交易所/价格应为缺失: %+v", r2)
	}
}

func TestParse_MissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("Timestamp,Exchange,Side\n93000000,X,A\n"))
	if err == nil {
		t.Fatalf("缺少必需列应报错")
	}
}

func TestParse_BadTimestamp(t *testing.T) {
	_, err := Parse(strings.NewReader("Timestamp,Exchange,Action,Side,Price,Quantity\nabc,X,FQ,A,1,1\n"))
	if err == nil {
		t.Fatalf("非法时间戳应报错")
	}
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	writeGz(t, filepath.Join(dir, "day1.gz"), sampleCSV)
	writeGz(t, filepath.Join(dir, "day2.gz"), "Timestamp,Exchange,Action,Side,Price,Quantity\n")
	// 非 .gz 文件忽略
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}

	tables, err := NewReader(nil).ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("表数=%d, want 2", len(tables))
	}
	if tables["day1.gz"].Len() != 3 {
		t.Fatalf("day1 行数=%d, want 3", tables["day1.gz"].Len())
	}
	if tables["day2.gz"].Len() != 0 {
		t.Fatalf("day2 行数=%d, want 0", tables["day2.gz"].Len())
	}
}

func TestReadDir_MissingDir(t *testing.T) {
	if _, err := NewReader(nil).ReadDir("/no/such/dir"); err == nil {
		t.Fatalf("目录不存在应报错")
	}
}

func writeGz(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("创建文件失败: %v", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatalf("写入 gz 失败: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("关闭 gz 失败: %v", err)
	}
}

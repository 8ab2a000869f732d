package domain

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileMapping 文件名映射
//
// 代理文件ID由存储层生成，在语料库内唯一且单调递增。原始文件名只保留在
// 本地，不发送给远端语料服务：远端服务不保证非ASCII显示名的往返一致性。
type FileMapping struct {
	CorpusID     string
	SurrogateID  int64
	OriginalName string
	CreatedAt    time.Time
}

// Extension 原始文件扩展名（含点，可能为空）
func (m *FileMapping) Extension() string {
	return filepath.Ext(m.OriginalName)
}

// SurrogateFileName 代理文件名，即远端与Blob存储实际使用的名字
func (m *FileMapping) SurrogateFileName() string {
	return fmt.Sprintf("%d%s", m.SurrogateID, m.Extension())
}

// BlobObjectName Blob存储对象键：{ownerID}/{surrogateID}{ext}
func (m *FileMapping) BlobObjectName(ownerID string) string {
	return fmt.Sprintf("%s/%s", ownerID, m.SurrogateFileName())
}

// ParseSurrogateID 从远端文件名解析代理ID
//
// 上传文件名由本系统选定，因此远端文件标识可以还原出代理ID；
// 解析失败说明该文件不是本系统上传的。
func ParseSurrogateID(remoteFileName string) (int64, bool) {
	base := filepath.Base(remoteFileName)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	id, err := strconv.ParseInt(stem, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

package biz

import (
	"fmt"
	"regexp"
)

// 远端语料库没有用户概念，所有权只能通过显示名/描述中编码的约定恢复。
// 历史上积累了多种互不兼容的命名约定，这里按从新到旧的顺序逐个尝试，
// 全部失败时该语料库归为无主（system）语料库，不猜测。

// EncodeCorpusDisplayName 当前命名约定：corpus-u{ownerID}-{name}
func EncodeCorpusDisplayName(ownerID, name string) string {
	return fmt.Sprintf("corpus-u%s-%s", ownerID, name)
}

// Attribution 所有权归因结果
type Attribution struct {
	OwnerID string
	Name    string
}

// attributionParser 单个命名约定的解析器，失败返回nil
type attributionParser func(displayName, description string) *Attribution

var (
	currentNamePattern = regexp.MustCompile(`^corpus-u([A-Za-z0-9_]+)-(.+)$`)
	legacyNamePattern  = regexp.MustCompile(`^u([A-Za-z0-9_]+)_(.+)$`)
	legacyDescPattern  = regexp.MustCompile(`(?:^|;\s*)owner=([A-Za-z0-9_-]+)`)
)

// parseCurrent 当前约定：corpus-u{owner}-{name}
func parseCurrent(displayName, _ string) *Attribution {
	m := currentNamePattern.FindStringSubmatch(displayName)
	if m == nil {
		return nil
	}
	return &Attribution{OwnerID: m[1], Name: m[2]}
}

// parseLegacyName 旧约定：u{owner}_{name}
func parseLegacyName(displayName, _ string) *Attribution {
	m := legacyNamePattern.FindStringSubmatch(displayName)
	if m == nil {
		return nil
	}
	return &Attribution{OwnerID: m[1], Name: m[2]}
}

// parseLegacyDescription 最早的约定把所有者写在描述里：owner={id}
func parseLegacyDescription(displayName, description string) *Attribution {
	m := legacyDescPattern.FindStringSubmatch(description)
	if m == nil {
		return nil
	}
	return &Attribution{OwnerID: m[1], Name: displayName}
}

// OwnerAttributor 按约定顺序恢复语料库所有者
type OwnerAttributor struct {
	parsers []attributionParser
}

// NewOwnerAttributor 创建归因器
func NewOwnerAttributor() *OwnerAttributor {
	return &OwnerAttributor{
		parsers: []attributionParser{
			parseCurrent,
			parseLegacyName,
			parseLegacyDescription,
		},
	}
}

// Attribute 尝试恢复所有者，无法归因时返回nil
func (a *OwnerAttributor) Attribute(displayName, description string) *Attribution {
	for _, parse := range a.parsers {
		if attr := parse(displayName, description); attr != nil {
			return attr
		}
	}
	return nil
}

// Package knowledge 是知识库 (Chatbase) 的客户端：文本 source 的增删改查、重新训练、对话。
package knowledge

import (
	"context"
	"fmt"
)

// Source 知识库中一段命名文本
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// AgentCheck 智能体 ID 探测结果
type AgentCheck struct {
	Valid  bool
	Reason string
}

type Provider interface {
	AddSource(ctx context.Context, agentID, name, content string) (*Source, error)
	UpdateSource(ctx context.Context, sourceID, name, content string) error
	ListSources(ctx context.Context, agentID string) ([]Source, error)
	DeleteSource(ctx context.Context, sourceID string) error
	Retrain(ctx context.Context, agentID string) error
	Chat(ctx context.Context, agentID, message string) (string, error)
	CheckAgent(ctx context.Context, agentID string) (AgentCheck, error)
}

// UpsertAction UpsertSource 实际执行的操作
type UpsertAction string

const (
	ActionAdded   UpsertAction = "added"
	ActionUpdated UpsertAction = "updated"
)

// SourceName 同一文件每次同步得到同一个名字：<tag>_<fileName>_<fileID>
func SourceName(tag, fileName, fileID string) string {
	return fmt.Sprintf("%s_%s_%s", tag, fileName, fileID)
}

// UpsertSource 先按名字查找，存在则更新，否则新增。
// 列表失败时直接返回错误，不盲目新增以免产生重复 source。
func UpsertSource(ctx context.Context, p Provider, agentID, name, content string) (UpsertAction, error) {
	sources, err := p.ListSources(ctx, agentID)
	if err != nil {
		return "", err
	}
	for _, s := range sources {
		if s.Name == name {
			if err := p.UpdateSource(ctx, s.ID, name, content); err != nil {
				return "", err
			}
			return ActionUpdated, nil
		}
	}
	if _, err := p.AddSource(ctx, agentID, name, content); err != nil {
		return "", err
	}
	return ActionAdded, nil
}

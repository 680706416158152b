package artifact

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/rushteam/habitkit/core"
)

const (
	blobKeyPrefix = "habitkit:artifact:"
	currentKey    = "habitkit:artifact:current"
)

// Registry 负责工件的版本化存取。
//
// 发布分两步：先写入版本化的工件内容，再切换"当前版本"指针。
// 指针写入是单 key 操作，读者要么看到旧版本要么看到新版本，不会读到半成品。
type Registry struct {
	Store core.Store
}

func NewRegistry(store core.Store) *Registry {
	return &Registry{Store: store}
}

// Publish 发布一个新的工件版本并切换当前指针，返回分配的版本号。
// b.Version 为空时自动分配 UUID。
func (r *Registry) Publish(ctx context.Context, b *Bundle) (string, error) {
	if b == nil {
		return "", core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInvalidInput, "artifact: bundle is nil")
	}
	if b.Encoder == nil {
		return "", core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInvalidInput, "artifact: bundle has no encoder")
	}
	if b.Version == "" {
		b.Version = uuid.NewString()
	}

	data, err := json.Marshal(b)
	if err != nil {
		return "", core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInternalError, "artifact: marshal: "+err.Error())
	}

	// 第一步：写入不可变的版本化内容
	if err := r.Store.Set(ctx, blobKeyPrefix+b.Version, data); err != nil {
		return "", err
	}
	// 第二步：原子切换当前版本指针
	if err := r.Store.Set(ctx, currentKey, []byte(b.Version)); err != nil {
		return "", err
	}
	return b.Version, nil
}

// Load 按版本号读取工件。
func (r *Registry) Load(ctx context.Context, version string) (*Bundle, error) {
	data, err := r.Store.Get(ctx, blobKeyPrefix+version)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeNotFound, "artifact: version "+version+" not found")
		}
		return nil, err
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInternalError, "artifact: unmarshal: "+err.Error())
	}
	return &b, nil
}

// Current 读取当前指针指向的工件版本。
// 从未发布过工件时返回 NOT_FOUND，调用方应视为"模型未就绪"而不是异常。
func (r *Registry) Current(ctx context.Context) (*Bundle, error) {
	version, err := r.Store.Get(ctx, currentKey)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeNotFound, "artifact: no published bundle")
		}
		return nil, err
	}
	return r.Load(ctx, string(version))
}

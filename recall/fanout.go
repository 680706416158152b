package recall

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/habitkit/core"
	"github.com/rushteam/habitkit/pipeline"
)

// Fanout 是候选召回 Node：并发执行多个候选源并按 ID 去重合并。
// 单个候选源失败不影响其他源；全部失败时返回空候选集，由上层决定是否降级。
type Fanout struct {
	Sources []Source
	Timeout time.Duration // 每个候选源的超时时间，0 表示跟随请求超时
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	// 单源时不必付出并发合并的开销
	if len(n.Sources) == 1 {
		return n.Sources[0].Recall(ctx, rctx)
	}

	var (
		mu      sync.Mutex
		grouped = make([][]*core.Item, len(n.Sources))
		eg, _   = errgroup.WithContext(ctx)
	)
	for i, src := range n.Sources {
		idx, s := i, src
		eg.Go(func() error {
			recallCtx := ctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(ctx, n.Timeout)
				defer cancel()
			}
			items, err := s.Recall(recallCtx, rctx)
			if err != nil {
				// 单源失败不中断其他源
				return nil
			}
			mu.Lock()
			grouped[idx] = items
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 按源的声明顺序合并去重，保证同一输入得到同一候选顺序
	seen := make(map[string]*core.Item, 64)
	out := make([]*core.Item, 0, 64)
	for _, items := range grouped {
		for _, it := range items {
			if it == nil {
				continue
			}
			if old, ok := seen[it.ID]; ok {
				for k, v := range it.Labels {
					old.PutLabel(k, v)
				}
				continue
			}
			seen[it.ID] = it
			out = append(out, it)
		}
	}
	return out, nil
}

package artifact

import (
	"time"

	"github.com/rushteam/habitkit/feature"
	"github.com/rushteam/habitkit/model"
	"github.com/rushteam/habitkit/rank"
)

// Bundle 是一次训练产出的完整模型工件：编码参数 + 协同模型 + 成功率模型 + 权重策略。
//
// 工件是不可变的版本化快照（arena 风格）：
//   - 每次重训产出一个新版本，旧版本原样保留
//   - 读者永远钉在某一个版本上，一次请求内看到的所有参数来自同一版本
//   - 发布即原子切换"当前版本"指针，没有中间状态
type Bundle struct {
	Version        string    `json:"version"`
	CatalogVersion string    `json:"catalog_version"`
	CreatedAt      time.Time `json:"created_at"`

	Encoder *feature.Encoder    `json:"encoder"`
	MF      *model.MF           `json:"mf,omitempty"`
	Success *model.SuccessModel `json:"success,omitempty"`
	Policy  *rank.WeightPolicy  `json:"policy,omitempty"`
}

package model

// Classifier 是二分类器的最小抽象：输入特征，输出原始打分（log-odds 语义）。
// 具体实现可以是本地模型（GBDT）或远程服务；habitkit 内置梯度提升树桩实现。
type Classifier interface {
	Name() string
	PredictRaw(features map[string]float64) float64
}

// Envelope 是成功率预测的输出信封。
// Calibrated=false 表示校准样本不足、回退到原始模型输出；
// 这不是错误，但必须对融合层可见（影响下游对该信号的信任）。
type Envelope struct {
	Probability float64 `json:"probability"`
	Calibrated  bool    `json:"calibrated"`
}

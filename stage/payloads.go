package stage

// Block payloads. Each type that carries configuration has one struct here;
// the registry's NewData factory returns a pointer to it with defaults set.

// DatasetData configures a dataset source.
type DatasetData struct {
	Source    string `json:"source" validate:"max=512"`
	Format    string `json:"format" validate:"oneof=csv json parquet"`
	HasHeader bool   `json:"has_header"`
}

// ColumnsData lists columns a block operates on.
type ColumnsData struct {
	Columns []string `json:"columns" validate:"dive,required,max=128"`
}

// FillMissingData configures missing-value imputation.
type FillMissingData struct {
	Strategy string `json:"strategy" validate:"oneof=mean median mode constant"`
	Value    string `json:"value" validate:"required_if=Strategy constant,max=128"`
}

// NormalizeData configures feature scaling.
type NormalizeData struct {
	Method string `json:"method" validate:"oneof=minmax zscore robust"`
}

// EncodeData configures categorical encoding.
type EncodeData struct {
	Method  string   `json:"method" validate:"oneof=onehot label ordinal"`
	Columns []string `json:"columns" validate:"dive,required,max=128"`
}

// OutlierData configures outlier removal.
type OutlierData struct {
	Method    string  `json:"method" validate:"oneof=iqr zscore"`
	Threshold float64 `json:"threshold" validate:"gt=0,lte=100"`
}

// SplitData configures the train/test split.
type SplitData struct {
	TestRatio float64 `json:"test_ratio" validate:"gt=0,lt=1"`
	Shuffle   bool    `json:"shuffle"`
	Seed      int64   `json:"seed" validate:"gte=0"`
}

// LinearRegressionData configures a linear regression model.
type LinearRegressionData struct {
	FitIntercept bool `json:"fit_intercept"`
}

// LogisticRegressionData configures a logistic regression model.
type LogisticRegressionData struct {
	C       float64 `json:"c" validate:"gt=0"`
	MaxIter int     `json:"max_iter" validate:"gte=1,lte=100000"`
}

// RandomForestData configures a random forest model.
type RandomForestData struct {
	Trees    int `json:"n_estimators" validate:"gte=1,lte=10000"`
	MaxDepth int `json:"max_depth" validate:"gte=0"`
}

// NeuralNetworkData configures a feed-forward network.
type NeuralNetworkData struct {
	HiddenLayers []int   `json:"hidden_layers" validate:"min=1,max=16,dive,gte=1,lte=4096"`
	Activation   string  `json:"activation" validate:"oneof=relu tanh sigmoid"`
	Epochs       int     `json:"epochs" validate:"gte=1,lte=10000"`
	LearningRate float64 `json:"learning_rate" validate:"gt=0,lt=1"`
}

// AveragingData configures how a multi-class metric is averaged.
type AveragingData struct {
	Average string `json:"average" validate:"oneof=binary micro macro weighted"`
}

// ConfusionMatrixData configures the confusion matrix.
type ConfusionMatrixData struct {
	Normalize bool `json:"normalize"`
}

// PredictData configures inference.
type PredictData struct {
	BatchSize int `json:"batch_size" validate:"gte=1,lte=100000"`
}

// ExportData configures where predictions are written.
type ExportData struct {
	Format string `json:"format" validate:"oneof=csv json"`
	Path   string `json:"path" validate:"max=512"`
}

package stage

import (
	"github.com/kbukum/blockflow/registry"
	"github.com/kbukum/blockflow/rule"
)

// Type keys shared by every stage.
const (
	TypeStart = "start"
	TypeEnd   = "end"
)

// Preprocessing type keys.
const (
	TypeDropColumns       = "drop_columns"
	TypeFillMissing       = "fill_missing"
	TypeNormalize         = "normalize"
	TypeEncodeCategorical = "encode_categorical"
	TypeRemoveOutliers    = "remove_outliers"
)

// Training type keys.
const (
	TypeTrainTestSplit     = "train_test_split"
	TypeLinearRegression   = "linear_regression"
	TypeLogisticRegression = "logistic_regression"
	TypeRandomForest       = "random_forest"
	TypeNeuralNetwork      = "neural_network"
)

// Performance type keys.
const (
	TypeAccuracy        = "accuracy"
	TypePrecision       = "precision"
	TypeRecall          = "recall"
	TypeF1Score         = "f1_score"
	TypeMSE             = "mse"
	TypeConfusionMatrix = "confusion_matrix"
)

// Predicting type keys.
const (
	TypeLoadInput     = "load_input"
	TypePredict       = "predict"
	TypeExportResults = "export_results"
)

// ModelTypes are the training blocks that produce a model.
var ModelTypes = []string{TypeLinearRegression, TypeLogisticRegression, TypeRandomForest, TypeNeuralNetwork}

// MetricTypes are the performance blocks that compute a score.
var MetricTypes = []string{TypeAccuracy, TypePrecision, TypeRecall, TypeF1Score, TypeMSE, TypeConfusionMatrix}

const (
	seedStartX = 80
	seedEndX   = 880
	seedY      = 240
)

func start(newData func() any) registry.Descriptor {
	return registry.Descriptor{
		TypeKey:        TypeStart,
		Label:          "Start",
		ProducesOutput: true,
		MaxInstances:   1,
		Protected:      true,
		SeedX:          seedStartX,
		SeedY:          seedY,
		NewData:        newData,
	}
}

func end() registry.Descriptor {
	return registry.Descriptor{
		TypeKey:      TypeEnd,
		Label:        "End",
		AcceptsInput: true,
		MaxInstances: 1,
		Protected:    true,
		SeedX:        seedEndX,
		SeedY:        seedY,
	}
}

// step builds an in/out processing block.
func step(key, label string, limit registry.Limit, newData func() any) registry.Descriptor {
	return registry.Descriptor{
		TypeKey:        key,
		Label:          label,
		AcceptsInput:   true,
		ProducesOutput: true,
		MaxInstances:   limit,
		NewData:        newData,
	}
}

func averaging() any { return &AveragingData{Average: "macro"} }

func newPreprocessing() Definition {
	reg := registry.MustNew(string(Preprocessing),
		start(func() any { return &DatasetData{Format: "csv", HasHeader: true} }),
		step(TypeDropColumns, "Drop columns", registry.Unlimited, func() any { return &ColumnsData{Columns: []string{}} }),
		step(TypeFillMissing, "Fill missing values", registry.Unlimited, func() any { return &FillMissingData{Strategy: "mean"} }),
		step(TypeNormalize, "Normalize", registry.Unlimited, func() any { return &NormalizeData{Method: "minmax"} }),
		step(TypeEncodeCategorical, "Encode categorical", registry.Unlimited, func() any { return &EncodeData{Method: "onehot", Columns: []string{}} }),
		step(TypeRemoveOutliers, "Remove outliers", registry.Unlimited, func() any { return &OutlierData{Method: "iqr", Threshold: 1.5} }),
		end(),
	)
	return Definition{
		ID:       Preprocessing,
		Title:    "Data preprocessing",
		Registry: reg,
		Step:     progressStep(Preprocessing),
		Rule: rule.Then(
			rule.RequireChainCount(1),
			rule.RequireEndpointTypes(TypeStart, TypeEnd),
		),
	}
}

func newTraining() Definition {
	reg := registry.MustNew(string(Training),
		start(nil),
		step(TypeTrainTestSplit, "Train/test split", 1, func() any { return &SplitData{TestRatio: 0.2, Shuffle: true, Seed: 42} }),
		step(TypeLinearRegression, "Linear regression", 1, func() any { return &LinearRegressionData{FitIntercept: true} }),
		step(TypeLogisticRegression, "Logistic regression", 1, func() any { return &LogisticRegressionData{C: 1, MaxIter: 100} }),
		step(TypeRandomForest, "Random forest", 1, func() any { return &RandomForestData{Trees: 100} }),
		step(TypeNeuralNetwork, "Neural network", 1, func() any {
			return &NeuralNetworkData{HiddenLayers: []int{64, 32}, Activation: "relu", Epochs: 20, LearningRate: 0.001}
		}),
		end(),
	)
	return Definition{
		ID:       Training,
		Title:    "Model training",
		Registry: reg,
		Step:     progressStep(Training),
		Rule: rule.Then(
			rule.RequireChainCount(1),
			rule.RequireEndpointTypes(TypeStart, TypeEnd),
			rule.RequireExactly(1, "model", ModelTypes...),
			rule.RequireOrder(TypeTrainTestSplit, ModelTypes...),
		),
	}
}

func newPerformance() Definition {
	reg := registry.MustNew(string(Performance),
		start(nil),
		step(TypeAccuracy, "Accuracy", 1, nil),
		step(TypePrecision, "Precision", 1, averaging),
		step(TypeRecall, "Recall", 1, averaging),
		step(TypeF1Score, "F1 score", 1, averaging),
		step(TypeMSE, "Mean squared error", 1, nil),
		step(TypeConfusionMatrix, "Confusion matrix", 1, func() any { return &ConfusionMatrixData{} }),
		end(),
	)
	return Definition{
		ID:       Performance,
		Title:    "Model performance",
		Registry: reg,
		Step:     progressStep(Performance),
		Rule: rule.Then(
			rule.RequireChainCount(1),
			rule.RequireEndpointTypes(TypeStart, TypeEnd),
			rule.RequireAtLeast(1, "metric", MetricTypes...),
		),
	}
}

func newPredicting() Definition {
	reg := registry.MustNew(string(Predicting),
		start(nil),
		step(TypeLoadInput, "Load input", 1, func() any { return &DatasetData{Format: "csv", HasHeader: true} }),
		step(TypePredict, "Predict", 1, func() any { return &PredictData{BatchSize: 256} }),
		step(TypeExportResults, "Export results", registry.Unlimited, func() any { return &ExportData{Format: "csv"} }),
		end(),
	)
	return Definition{
		ID:       Predicting,
		Title:    "Prediction",
		Registry: reg,
		Step:     progressStep(Predicting),
		Rule: rule.Then(
			rule.RequireChainCount(1),
			rule.RequireEndpointTypes(TypeStart, TypeEnd),
			rule.RequireOrder(TypeLoadInput, TypePredict),
		),
	}
}

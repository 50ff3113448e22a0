package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joeshaw/envdecode"

	"stockpot"
	"stockpot/model/bedrock"
	"stockpot/recommend"
)

type Params struct {
	Request stockpot.RecommendationRequest `json:"request"`
}

type Results struct {
	Recipes []stockpot.Recipe `json:"recipes"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var modelConfig stockpot.ModelConfig
		if err := envdecode.Decode(&modelConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var engineConfig stockpot.EngineConfig
		if err := envdecode.Decode(&engineConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		brc, err := newBedrockRuntimeClient(ctx)
		if err != nil {
			return Results{}, err
		}

		engine := recommend.NewEngine(
			bedrock.NewClient(brc, modelConfig.ModelID),
			recommend.DefaultGenerationConfig,
			engineConfig.MaxAttempts,
			engineConfig.RetryDelay,
			stockpot.NewStdoutAttemptLogger(),
		)

		recipes, err := engine.Recommend(ctx, params.Request)
		if err != nil {
			return Results{}, err
		}

		return Results{Recipes: recipes}, nil
	}

	lambda.Start(fn)
}

func newBedrockRuntimeClient(ctx context.Context) (*bedrockruntime.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRetryMaxAttempts(5))
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}

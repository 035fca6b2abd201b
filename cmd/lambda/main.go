package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/todosuggest/relay/config"
	"github.com/todosuggest/relay/internal/bootstrap"
	suggestlambda "github.com/todosuggest/relay/internal/suggestions/lambda"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	h := suggestlambda.NewHandler(bootstrap.BuildRelay(cfg))
	lambda.Start(h.Handle)
}

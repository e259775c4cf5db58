package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/tyler180/punt-outcomes/tools/punt-outcomes/internal/app/outcomes"
)

func main() {
	log.SetFlags(0)
	lambda.Start(outcomes.LambdaEntrypoint)
}

// Command predict is the function that serves the backend application.
package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awantoch/cvdfunctions/serverless"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	lambda.Start(serverless.Handler)
}

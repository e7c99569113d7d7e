// Command test is the health-check function.
package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awantoch/cvdfunctions/health"
)

func main() {
	lambda.Start(health.Handler)
}

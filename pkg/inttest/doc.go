// Package inttest sets up the dependencies of integration tests in Docker containers: PostgreSQL,
// Redis, RabbitMQ and S3 (via localstack). Setup functions block until their container accepts
// connections, register cleanup with the test and return a connected client.
//
// RabbitMQ runs the management image. Pause a test in a debugger and log into the UI on the
// exposed management port to inspect the submission queue.
package inttest

// Package rabbitmq содержит подключение к брокеру, объявление топологии
// доменных событий, публикацию и потребление сообщений.
package rabbitmq

import (
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/streadway/amqp"
)

// Connect подключается к RabbitMQ, повторяя попытки retries раз с паузой delay.
func Connect(url string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	if retries < 0 {
		retries = 0
	}
	var conn *amqp.Connection
	err := backoff.Retry(func() error {
		c, err := amqp.Dial(url)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(retries)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return conn, nil
}

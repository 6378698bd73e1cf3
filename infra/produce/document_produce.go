package produce

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DocumentExchange        = "document.exchange"
	DocumentIndexQueue      = "document.index"
	DocumentIndexRoutingKey = "document.index"
)

// DocumentIndexMessage asks the index worker to chunk a document's content.
type DocumentIndexMessage struct {
	DocumentID string `json:"document_id"`
	FileID     string `json:"file_id"`
	ClientID   string `json:"client_id"`
	Timestamp  int64  `json:"timestamp"`
}

// DocumentIndexService publishes index jobs for newly created documents.
type DocumentIndexService struct {
	channel *amqp.Channel
}

func InitDocumentIndexService(channel *amqp.Channel) *DocumentIndexService {
	service := &DocumentIndexService{
		channel: channel,
	}

	err := channel.ExchangeDeclare(
		DocumentExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Document exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		DocumentIndexQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Document Index queue: " + err.Error())
	}

	err = channel.QueueBind(
		DocumentIndexQueue,
		DocumentIndexRoutingKey,
		DocumentExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind Document Index queue: " + err.Error())
	}

	return service
}

// PublishDocumentIndex publishes an index job to the document index queue.
func (s *DocumentIndexService) PublishDocumentIndex(ctx context.Context, msg DocumentIndexMessage) error {
	msg.Timestamp = time.Now().Unix()

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		DocumentExchange,
		DocumentIndexRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}

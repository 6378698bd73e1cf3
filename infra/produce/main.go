package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	DocumentIndex *DocumentIndexService
}

var produceInstance *Produce

func InitProduce(channel *amqp.Channel) *Produce {
	if produceInstance != nil {
		return produceInstance
	}

	documentIndex := InitDocumentIndexService(channel)
	if documentIndex == nil {
		panic("Failed to initialize Document Index service")
	}

	produceInstance = &Produce{
		DocumentIndex: documentIndex,
	}

	return produceInstance
}

func GetProduce() *Produce {
	if produceInstance == nil {
		panic("Produce not initialized. Call InitProduce() first.")
	}
	return produceInstance
}

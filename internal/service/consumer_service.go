package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-casefile-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub          *gochannel.GoChannel
	topicName       string
	pipelineService IPipelineService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	pipelineService IPipelineService,
) IConsumerService {
	return &consumerService{
		pubSub:          pubSub,
		topicName:       topicName,
		pipelineService: pipelineService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.GenerateCaseMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal generation message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing case generation for OperationId: %s", payload.OperationId)

	// Run owns the terminal transition on the operation, so the message is
	// always acked: redelivering would re-run a pipeline whose operation is
	// already terminal and the registry would discard its writes anyway.
	cs.pipelineService.Run(ctx, &payload)
	msg.Ack()
}

// Settlement alerts go out only after the money movement has been
// committed: producers publish post-commit, so an email here never
// describes a balance that rolled back.
package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/spectrumarena/arenapay/internal/stream"
)

func (wk *Worker) SettlementAlertWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: settlementAlertGroupID,
		Topics:  []string{stream.PaymentSettledTopic, stream.SavingsReleasedTopic},
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close()

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("SettlementAlertWorker received cancellation signal, shutting down...")
			return
		default:
			event := consumer.Poll(100)
			switch e := event.(type) {
			case *kafka.Message:
				if e.TopicPartition.Topic == nil {
					continue
				}

				switch *e.TopicPartition.Topic {
				case stream.PaymentSettledTopic:
					wk.sendPaymentSettledAlert(e.Value)
				case stream.SavingsReleasedTopic:
					wk.sendSavingsReleasedAlert(e.Value)
				}
			case kafka.Error:
				log.Printf("Error: %v\n", e)
			case *kafka.AssignedPartitions:
				consumer.Assign(e.Partitions)
			case *kafka.RevokedPartitions:
				consumer.Unassign()
			}
		}
	}
}

func (wk *Worker) sendPaymentSettledAlert(message []byte) {
	var settled stream.PaymentSettledEvent
	err := json.Unmarshal(message, &settled)
	if err != nil {
		log.Printf("Error decoding payment settled event: %v", err)
		return
	}

	wk.Helper.BackgroundTask(nil, func() error {
		emailData := wk.Helper.NewEmailData()
		emailData["Reference"] = settled.Reference
		emailData["Amount"] = settled.Amount
		emailData["PaymentType"] = settled.PaymentType

		err := wk.Mailer.Send(settled.Email, emailData, "payment-settled.tmpl")
		if err != nil {
			log.Printf("Error sending payment settled email: %v", err)
			return err
		}

		return nil
	})
}

func (wk *Worker) sendSavingsReleasedAlert(message []byte) {
	var released stream.SavingsReleasedEvent
	err := json.Unmarshal(message, &released)
	if err != nil {
		log.Printf("Error decoding savings released event: %v", err)
		return
	}

	wk.Helper.BackgroundTask(nil, func() error {
		emailData := wk.Helper.NewEmailData()
		emailData["Amount"] = released.Amount
		emailData["Interest"] = released.Interest

		err := wk.Mailer.Send(released.Email, emailData, "savings-released.tmpl")
		if err != nil {
			log.Printf("Error sending savings released email: %v", err)
			return err
		}

		return nil
	})
}

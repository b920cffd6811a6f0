package kafka

import (
	"strings"

	kctl "github.com/jbvmio/kafka"
	"github.com/pkg/errors"
)

var useKafkaVersion = kctl.VER210KafkaVersion

// topicExists returns true if the given topic exists, otherwise false.
func topicExists(client *kctl.KClient, topic string) bool {
	tMeta, err := client.GetTopicMeta()
	if err != nil {
		return false
	}
	for _, t := range tMeta {
		if t.Topic == topic {
			return true
		}
	}
	return false
}

// splitBrokers splits a comma separated broker list, dropping empty and duplicate entries.
func splitBrokers(hosts string) ([]string, error) {
	var brokers []string
	dupe := make(map[string]bool)
	for _, b := range strings.Split(hosts, ",") {
		b = strings.TrimSpace(b)
		if b == "" || dupe[b] {
			continue
		}
		dupe[b] = true
		brokers = append(brokers, b)
	}
	if len(brokers) < 1 {
		return nil, errors.New("no brokers defined")
	}
	return brokers, nil
}

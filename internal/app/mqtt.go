// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// publisher is the part of mqtt.Client the producers use.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

func connectMQTT(broker, clientID string, logger zerolog.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn().Err(err).Msg("MQTT connection lost")
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}
	logger.Info().Str("broker", broker).Msg("connected to MQTT broker")
	return client, nil
}

// publishJSON marshals v and publishes it, waiting for the broker.
func publishJSON(pub publisher, topic string, retained bool, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json marshal (%s): %w", topic, err)
	}
	if token := pub.Publish(topic, 0, retained, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish (%s): %w", topic, token.Error())
	}
	return nil
}

// subscribeJSON decodes every message on topic into a fresh T.
func subscribeJSON[T any](client mqtt.Client, topic string, logger zerolog.Logger, handle func(T)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v T
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("payload unmarshal error")
			return
		}
		handle(v)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe %s: %w", topic, token.Error())
	}
	logger.Info().Str("topic", topic).Msg("subscribed")
	return nil
}

package orders

// DefaultTopic receives every order event; overridable with KAFKA_TOPIC_PAYMENTS.
const DefaultTopic = "yacht.payments"

// Partition key = order id so all events of one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

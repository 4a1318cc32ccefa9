package hub

// Client is one websocket subscriber. Messages arrive on Recv as
// marshaled JSON; a closed channel means the hub dropped the client.
type Client struct {
	topic string
	send  chan []byte
}

// Recv returns the channel the hub delivers events on.
func (c *Client) Recv() <-chan []byte {
	return c.send
}

// Topic returns the topic the client subscribed to.
func (c *Client) Topic() string {
	return c.topic
}

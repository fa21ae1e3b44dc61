// preview-client connects to a running breathcam instance, starts the
// session, and saves received preview frames to disk. Useful for
// checking the stream without a browser.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	host := flag.String("host", "localhost:8090", "breathcam host:port")
	out := flag.String("out", "preview_frame.jpg", "file to write the latest frame to")
	count := flag.Int("n", 0, "stop after this many frames (0 = until interrupted)")
	flag.Parse()

	// Kick the session so frames flow.
	resp, err := http.Post(fmt.Sprintf("http://%s/api/session/start", *host), "application/json", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start request failed: %v\n", err)
		os.Exit(1)
	}
	resp.Body.Close()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(fmt.Sprintf("ws://%s/ws/preview", *host), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "websocket dial failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		conn.Close()
	}()

	fmt.Printf("receiving preview from %s (Ctrl+C to stop)\n", *host)

	frames := 0
	start := time.Now()
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		frames++
		if err := os.WriteFile(*out, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
			os.Exit(1)
		}

		fps := float64(frames) / time.Since(start).Seconds()
		fmt.Printf("\rframe %d | %.1f fps | %d bytes   ", frames, fps, len(data))

		if *count > 0 && frames >= *count {
			break
		}
	}

	fmt.Printf("\nsaved latest frame to %s\n", *out)
}

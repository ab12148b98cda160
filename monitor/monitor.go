package monitor

import (
	"os"

	"conference-review-api/config"

	"github.com/gin-gonic/gin"
)

// RegisterMonitorPage serves a small status page for operators. It polls the
// health endpoint and tails the backend log.
func RegisterMonitorPage(router *gin.Engine) {
	router.GET("/monitor", func(c *gin.Context) {
		c.Data(200, "text/html; charset=utf-8", []byte(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Conference Review API Monitor</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }

    body {
      background: #10141c;
      color: #e0e0e0;
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Ubuntu, Cantarell, sans-serif;
      min-height: 100vh;
      padding: 20px;
    }

    .container { max-width: 1100px; margin: 0 auto; }

    h1 { font-size: 2rem; margin-bottom: 1.5rem; color: #a5b4fc; }

    .status-card, .logs-container {
      background: rgba(255, 255, 255, 0.04);
      border: 1px solid rgba(255, 255, 255, 0.1);
      border-radius: 12px;
      padding: 1.25rem;
      margin-bottom: 1.5rem;
    }

    #status { font-size: 1.1rem; font-weight: 600; }

    .logs-header {
      display: flex;
      justify-content: space-between;
      align-items: center;
      margin-bottom: 1rem;
      padding-bottom: 0.75rem;
      border-bottom: 1px solid rgba(255, 255, 255, 0.1);
    }

    .logs-title { font-size: 1.1rem; font-weight: 600; color: #a5b4fc; }

    #logs {
      background: rgba(0, 0, 0, 0.35);
      padding: 1rem;
      border-radius: 8px;
      max-height: 500px;
      overflow-y: auto;
      white-space: pre-wrap;
      font-family: 'Monaco', 'Consolas', 'Courier New', monospace;
      font-size: 0.85rem;
      line-height: 1.5;
      color: #cbd5e1;
    }

    input, button {
      padding: 0.5rem 1rem;
      border-radius: 6px;
      border: 1px solid #334155;
      background: #1e2533;
      color: #e0e0e0;
      font-size: 0.85rem;
    }

    button { cursor: pointer; font-weight: 600; }
    button:hover { background: #2a3347; }
  </style>
</head>
<body>
  <div class="container">
    <h1>Conference Review API</h1>

    <div class="status-card">
      <div id="status">Status: checking...</div>
    </div>

    <div class="logs-container">
      <div class="logs-header">
        <div class="logs-title">Server Logs</div>
        <div>
          <input id="token" type="password" placeholder="monitor token" />
          <button onclick="toggleLive()" id="toggleBtn">Pause</button>
        </div>
      </div>
      <pre id="logs">Enter the monitor token to load logs.</pre>
    </div>
  </div>

  <script>
    let liveLogs = true;
    const logsElement = document.getElementById('logs');
    const statusElement = document.getElementById('status');
    const toggleBtn = document.getElementById('toggleBtn');
    const tokenInput = document.getElementById('token');

    function fetchStatus() {
      fetch('/api/v1/health')
        .then(res => res.json())
        .then(data => {
          statusElement.textContent = 'Status: ' + (data.status === 'ok' ? 'online' : 'offline');
        })
        .catch(() => {
          statusElement.textContent = 'Status: offline';
        });
    }

    function fetchLogs() {
      if (!liveLogs || !tokenInput.value) return;
      fetch('/logs?token=' + encodeURIComponent(tokenInput.value))
        .then(res => res.text())
        .then(data => {
          logsElement.textContent = data;
          logsElement.scrollTop = logsElement.scrollHeight; // auto scroll
        });
    }

    function toggleLive() {
      liveLogs = !liveLogs;
      toggleBtn.textContent = liveLogs ? 'Pause' : 'Resume';
    }

    fetchStatus();
    setInterval(fetchStatus, 5000);
    setInterval(fetchLogs, 5000);
  </script>
</body>
</html>`))
	})
}

// RegisterLogsRoute exposes the backend log behind the MONITOR_TOKEN env var.
// The route stays disabled when no token is configured.
func RegisterLogsRoute(router *gin.Engine) {
	router.GET("/logs", func(c *gin.Context) {
		token := os.Getenv("MONITOR_TOKEN")
		if token == "" || c.Query("token") != token {
			c.JSON(401, gin.H{"error": "Unauthorized"})
			return
		}
		logData, err := os.ReadFile(config.LogFilePath())
		if err != nil {
			c.JSON(500, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(200, "text/plain; charset=utf-8", logData)
	})
}

package templates

// ClassicHTML is the detailed status page with tables and the raw reading.
const ClassicHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Probe Status</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
            margin: 0;
            padding: 20px;
            background: linear-gradient(135deg, #1e3c72 0%, #2a5298 100%);
            color: white;
            min-height: 100vh;
        }
        .container { max-width: 1200px; margin: 0 auto; }
        .header { text-align: center; margin-bottom: 40px; }
        .header h1 { font-size: 3rem; margin-bottom: 10px; }
        .status-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(300px, 1fr));
            gap: 20px;
            margin-bottom: 30px;
        }
        .status-card {
            background: rgba(255,255,255,0.1);
            border-radius: 15px;
            padding: 25px;
            border: 1px solid rgba(255,255,255,0.2);
        }
        .status-card h2 { margin-top: 0; color: #64c8ff; font-size: 1.5rem; }
        .data-table { width: 100%; border-collapse: collapse; margin-top: 15px; }
        .data-table th, .data-table td { padding: 8px 12px; text-align: left; border-bottom: 1px solid rgba(255,255,255,0.2); }
        .data-table th { background: rgba(255,255,255,0.1); font-weight: 600; }
        .json-data {
            background: rgba(0,0,0,0.3);
            border-radius: 8px;
            padding: 15px;
            font-family: 'Courier New', monospace;
            font-size: 0.9rem;
            overflow-x: auto;
            white-space: pre-wrap;
            word-break: break-word;
        }
        .timestamp { color: #a0a0a0; font-size: 0.9rem; }
        .status-indicator { display: inline-block; width: 12px; height: 12px; border-radius: 50%; margin-right: 8px; }
        .status-online { background: #4CAF50; }
        .status-offline { background: #f44336; }
        .level { display: inline-block; padding: 2px 10px; border-radius: 10px; background: {{.Color}}; }
        .back-link { color: #64c8ff; text-decoration: none; font-size: 1.1rem; margin-top: 20px; display: inline-block; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Probe Status</h1>
            <p class="timestamp">Last updated: {{.GeneratedAt}}</p>
            <button onclick="location.reload()">Refresh Data</button>
        </div>

        <div class="status-grid">
            <div class="status-card">
                <h2><span class="status-indicator {{if .HasData}}status-online{{else}}status-offline{{end}}"></span>System Status</h2>
                <table class="data-table">
                    <tr><td><strong>Status:</strong></td><td>{{if .HasData}}Online{{else}}No Data{{end}}</td></tr>
                    <tr><td><strong>Total Requests:</strong></td><td>{{.TotalRequests}}</td></tr>
                    <tr><td><strong>Last Update:</strong></td><td>{{if .LastUpdate}}{{.LastUpdate}}{{else}}Never{{end}}</td></tr>
                    <tr><td><strong>Server Uptime:</strong></td><td>{{.UptimeSeconds}} seconds</td></tr>
                    <tr><td><strong>Platform:</strong></td><td>{{.Platform}}</td></tr>
                    <tr><td><strong>Occupancy:</strong></td><td><span class="level">{{.Level}}</span> {{.People}} people ({{.Percentage}}%)</td></tr>
                </table>
            </div>
            {{if .HasData}}
            <div class="status-card">
                <h2>Latest Probe Data</h2>
                <table class="data-table">
                    <tr><td><strong>Device ID:</strong></td><td>{{.DeviceID}}</td></tr>
                    <tr><td><strong>Device Time:</strong></td><td>{{.SensorTime}}</td></tr>
                    <tr><td><strong>Received:</strong></td><td>{{.Received}}</td></tr>
                    <tr><td><strong>Interval:</strong></td><td>{{if .IntervalMs}}{{.IntervalMs}}ms{{else}}n/a{{end}}</td></tr>
                    <tr><td><strong>Age:</strong></td><td>{{.Updated}}</td></tr>
                </table>
            </div>
            <div class="status-card">
                <h2>WiFi Networks Detected</h2>
                <table class="data-table">
                    <thead><tr><th>SSID</th><th>Unique Devices</th></tr></thead>
                    <tbody>
                    {{range .Networks}}<tr><td>{{.SSID}}</td><td>{{.Count}}</td></tr>
                    {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}
        </div>
        {{if .HasData}}
        <div class="status-card">
            <h2>Raw JSON Data</h2>
            <div class="json-data">{{.RawJSON}}</div>
        </div>
        {{end}}
        <div style="text-align: center; margin-top: 40px;">
            <a href="/" class="back-link">&larr; Back to Main Site</a>
            <br><br>
            <a href="/status" class="back-link">View JSON Data</a>
        </div>
    </div>
    <script>
        setTimeout(() => location.reload(), 30000);
    </script>
</body>
</html>
`

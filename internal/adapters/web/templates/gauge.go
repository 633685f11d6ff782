package templates

// GaugeHTML is the minimal occupancy meter.
const GaugeHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <meta name="robots" content="noindex">
  <title>Occupancy Status</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      background: #000;
      color: #fff;
      height: 100vh;
      display: flex;
      align-items: center;
      justify-content: center;
      overflow: hidden;
    }
    .meter-container { text-align: center; position: relative; }
    .gauge { width: 300px; height: 300px; position: relative; margin: 0 auto 30px; }
    .gauge-bg {
      width: 100%;
      height: 100%;
      border-radius: 50%;
      background: conic-gradient(from 135deg, #333 0deg, #333 270deg, transparent 270deg);
      position: relative;
      padding: 20px;
    }
    .gauge-fill {
      width: 100%;
      height: 100%;
      border-radius: 50%;
      background: conic-gradient(from 135deg, {{.Color}} 0deg, {{.Color}} {{.FillDeg}}deg, transparent {{.FillDeg}}deg);
      position: relative;
    }
    .gauge-inner {
      position: absolute;
      top: 50%;
      left: 50%;
      transform: translate(-50%, -50%);
      width: 200px;
      height: 200px;
      background: #000;
      border-radius: 50%;
      display: flex;
      align-items: center;
      justify-content: center;
      flex-direction: column;
    }
    .count {
      font-size: 4rem;
      font-weight: 900;
      color: {{.Color}};
      line-height: 1;
      margin-bottom: 5px;
      font-variant-numeric: tabular-nums;
    }
    .label { font-size: 1rem; color: #888; text-transform: uppercase; letter-spacing: 1px; font-weight: 600; }
    .timestamp { font-size: 1.1rem; color: #666; margin-top: 20px; font-weight: 500; }
    .no-data .count { color: #666; }
    .no-data .gauge-fill { background: conic-gradient(from 135deg, #333 0deg, #333 270deg, transparent 270deg); }
    @media (max-width: 480px) {
      .gauge { width: 250px; height: 250px; }
      .gauge-inner { width: 170px; height: 170px; }
      .count { font-size: 3rem; }
    }
  </style>
</head>
<body>
  <div class="meter-container{{if not .HasData}} no-data{{end}}" data-level="{{.Level}}">
    <div class="gauge">
      <div class="gauge-bg">
        <div class="gauge-fill">
          <div class="gauge-inner">
            {{if .HasData}}
            <div class="count">{{.People}}</div>
            <div class="label">People</div>
            {{else}}
            <div class="count">&mdash;</div>
            <div class="label">No Data</div>
            {{end}}
          </div>
        </div>
      </div>
    </div>
    <div class="timestamp">{{if .HasData}}{{.Updated}}{{else}}Waiting for sensor data...{{end}}</div>
  </div>
  <script>
    let refresh = setInterval(() => window.location.reload(), 30000);
    document.addEventListener('visibilitychange', () => {
      clearInterval(refresh);
      if (!document.hidden) {
        refresh = setInterval(() => window.location.reload(), 30000);
      }
    });
  </script>
</body>
</html>
`

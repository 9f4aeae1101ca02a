package webapi

const defaultIndexHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>codeloom</title>
  <style>
    body { font-family: "Segoe UI", sans-serif; margin: 0; background: linear-gradient(145deg,#f7fafc,#e9eef7); color: #1f2937; }
    .wrap { max-width: 900px; margin: 0 auto; padding: 20px; }
    .panel { background: #fff; border-radius: 12px; box-shadow: 0 8px 30px rgba(15,23,42,.08); padding: 16px; margin-bottom: 16px; }
    textarea { width: 100%; min-height: 180px; border: 1px solid #cbd5e1; border-radius: 8px; padding: 10px; box-sizing: border-box; }
    select, input { padding: 10px; border: 1px solid #cbd5e1; border-radius: 8px; }
    .row { display: flex; gap: 8px; margin-top: 10px; }
    button { padding: 10px 16px; border: 0; border-radius: 8px; background: #0f766e; color: #fff; cursor: pointer; }
    button:hover { background: #0d9488; }
    #log { min-height: 120px; max-height: 40vh; overflow: auto; white-space: pre-wrap; border: 1px solid #d1d5db; border-radius: 8px; padding: 12px; background: #f9fafb; }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="panel">
      <h2>codeloom</h2>
      <textarea id="req" placeholder="Paste your requirements document here..."></textarea>
      <div class="row">
        <select id="flavor"></select>
        <input id="project" placeholder="project name" />
        <button id="run">Generate</button>
      </div>
    </div>
    <div class="panel">
      <div id="log"></div>
    </div>
  </div>
  <script>
    const log = document.getElementById('log');
    const append = (text) => { log.textContent += text + '\n'; log.scrollTop = log.scrollHeight; };
    fetch('/api/flavors').then(r => r.json()).then(data => {
      const sel = document.getElementById('flavor');
      for (const f of data.flavors) {
        const opt = document.createElement('option');
        opt.value = f.id;
        opt.textContent = f.id + ' — ' + f.description;
        sel.appendChild(opt);
      }
    });
    document.getElementById('run').addEventListener('click', () => {
      const req = document.getElementById('req').value.trim();
      if (!req) return;
      log.textContent = '';
      const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
      const ws = new WebSocket(proto + location.host + '/api/generate/stream');
      ws.onopen = () => ws.send(JSON.stringify({
        flavor: document.getElementById('flavor').value,
        project: document.getElementById('project').value,
        requirements: req
      }));
      ws.onmessage = (msg) => {
        const ev = JSON.parse(msg.data);
        if (ev.type === 'turn') {
          append('turn ' + ev.turn + '/' + ev.budget + ' [' + ev.role + '] -> ' + ev.artifacts + ' file(s)');
        } else if (ev.type === 'result') {
          append('done: ' + ev.result.files.length + ' file(s)' + (ev.result.degraded ? ' (degraded)' : ''));
          append('archive: /api/runs/' + ev.result.run_id + '/archive');
        } else {
          append('error: ' + ev.error);
        }
      };
    });
  </script>
</body>
</html>`

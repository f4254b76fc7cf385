package main

import (
	"html/template"
	"net/http"
)

func serveIndex(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexTmpl.Execute(w, struct{ Name string }{Name: name})
}

var indexTmpl = template.Must(template.New("chat").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Name}}</title>
  <style>
    :root{
      --bg: #0d1117;
      --panel: #111827;
      --border: #1f2937;
      --fg: #e5e7eb;
      --muted: #9ca3af;
      --accent: #22c55e;
    }
    *{ box-sizing: border-box }
    body { margin:0; padding:24px; background:var(--bg); color:var(--fg); font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial }
    .wrap { max-width: 760px; margin: 0 auto }
    h1 { margin:0 0 12px 0; font-weight:700 }
    .panel { border:1px solid var(--border); border-radius:10px; background:var(--panel); overflow:hidden }
    .bar { display:flex; align-items:center; justify-content:space-between; gap:8px; padding:10px 12px; border-bottom:1px solid var(--border); font-size:14px }
    .bar select, .bar button { background:transparent; border:1px solid var(--border); color:var(--fg); padding:6px 8px; border-radius:6px; font-size:13px; cursor:pointer }
    #username-display { color:var(--muted) }
    #chat-box { height:420px; overflow:auto; padding:14px; font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, monospace; font-size:14px; line-height:1.5 }
    .chat-message { white-space: pre-wrap; word-break: break-word }
    .chat-message .time { color:var(--muted) }
    #typing-status { min-height:1.2em; padding:0 14px 6px; color:var(--muted); font-size:13px; font-style:italic }
    .promptline { display:flex; align-items:center; gap:8px; padding:12px 14px; border-top:1px solid var(--border) }
    #message-input { flex:1 1 auto; min-width:0; background:transparent; border:1px solid var(--border); border-radius:6px; outline:none; color:var(--fg); padding:8px; font-size:14px }
    #send-btn { background:var(--accent); border:none; color:#052e10; padding:8px 14px; border-radius:6px; font-weight:600; cursor:pointer }
    .toast { position:fixed; bottom:24px; left:50%; transform:translateX(-50%); padding:10px 16px; border-radius:6px; color:#fff; background:#2196f3; opacity:0; pointer-events:none; transition:opacity .2s }
    .toast.show { opacity:1; pointer-events:auto }
    .toast button { margin-left:12px; background:#fff; color:#000; border:none; padding:2px 6px; border-radius:3px; cursor:pointer }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>{{.Name}}</h1>
    <div class="panel">
      <div class="bar">
        <span id="username-display"></span>
        <select id="room-select">
          <option value="general">#general</option>
          <option value="tech">#tech</option>
          <option value="random">#random</option>
        </select>
        <span>
          <button id="clear-history-btn">Clear</button>
          <button id="export-btn">Export</button>
          <button id="import-btn">Import</button>
          <input id="import-file" type="file" accept="application/json" style="display:none" />
        </span>
      </div>
      <div id="chat-box"></div>
      <div id="typing-status"></div>
      <div class="promptline">
        <input id="message-input" type="text" autocomplete="off" placeholder="type a message and press Enter" />
        <button id="send-btn">Send</button>
      </div>
    </div>
  </div>
  <div id="toast" class="toast"></div>
  <script>
    const chatBox = document.getElementById('chat-box');
    const input = document.getElementById('message-input');
    const sendBtn = document.getElementById('send-btn');
    const roomSelect = document.getElementById('room-select');
    const typingStatus = document.getElementById('typing-status');
    const usernameDisplay = document.getElementById('username-display');
    const clearHistoryBtn = document.getElementById('clear-history-btn');
    const exportBtn = document.getElementById('export-btn');
    const importBtn = document.getElementById('import-btn');
    const importFile = document.getElementById('import-file');
    const toast = document.getElementById('toast');

    let username = prompt('Enter your name:') || 'Guest';
    usernameDisplay.textContent = username;

    const wsProto = location.protocol === 'https:' ? 'wss' : 'ws';
    const basePath = location.pathname.endsWith('/') ? location.pathname : (location.pathname + '/');
    const ws = new WebSocket(wsProto + '://' + location.host + basePath + 'ws');
    function emit(event, data){ ws.send(JSON.stringify({ event, data })); }
    ws.onopen = () => {
      emit('set username', username);
      emit('join room', roomSelect.value);
    };

    let undoData = {};
    let toastTimer = null;

    function showToast(message, undoCallback = null, type = 'info'){
      toast.textContent = '';
      toast.style.background = type === 'success' ? '#4caf50' : '#2196f3';
      toast.textContent = message;
      toast.classList.add('show');
      if (undoCallback) {
        const undoBtn = document.createElement('button');
        undoBtn.textContent = 'Undo';
        undoBtn.onclick = () => { undoCallback(); toast.classList.remove('show'); };
        toast.appendChild(undoBtn);
      }
      if (toastTimer) clearTimeout(toastTimer);
      toastTimer = setTimeout(() => { toast.classList.remove('show'); toast.innerHTML = ''; }, 3000);
    }

    function escapeHTML(s){
      return String(s).replace(/[&<>"]/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;'}[c]));
    }
    function appendMessage(message, time){
      const div = document.createElement('div');
      div.classList.add('chat-message');
      div.innerHTML = '<span class="time">[' + escapeHTML(time) + ']</span> ' + message;
      chatBox.appendChild(div);
      chatBox.scrollTop = chatBox.scrollHeight;
    }
    function loadChatHistory(room){
      chatBox.innerHTML = '';
      let history = [];
      try { history = JSON.parse(localStorage.getItem('chat-history-' + room)) || []; } catch(_) {}
      if (!Array.isArray(history)) history = [];
      history.forEach(({ user, msg, time }) => {
        appendMessage('<strong>' + escapeHTML(user) + ':</strong> ' + escapeHTML(msg), time);
      });
    }
    function saveToLocalHistory(room, entry){
      let history = [];
      try { history = JSON.parse(localStorage.getItem('chat-history-' + room)) || []; } catch(_) {}
      if (!Array.isArray(history)) history = [];
      history.push(entry);
      localStorage.setItem('chat-history-' + room, JSON.stringify(history));
    }
    function clearChatHistory(room){
      undoData[room] = localStorage.getItem('chat-history-' + room);
      localStorage.removeItem('chat-history-' + room);
      chatBox.innerHTML = '';
    }
    function restoreChatHistory(room){
      if (undoData[room]) {
        localStorage.setItem('chat-history-' + room, undoData[room]);
        loadChatHistory(room);
        showToast('Chat history restored.', null, 'success');
      }
    }

    sendBtn.addEventListener('click', () => {
      const msg = input.value.trim();
      if (msg) {
        emit('chat message', { msg, room: roomSelect.value });
        input.value = '';
      }
    });
    input.addEventListener('keydown', (e) => {
      if (e.key === 'Enter') { e.preventDefault(); sendBtn.click(); }
    });
    input.addEventListener('input', () => {
      emit('typing', roomSelect.value);
    });
    roomSelect.addEventListener('change', () => {
      emit('join room', roomSelect.value);
      loadChatHistory(roomSelect.value);
    });

    clearHistoryBtn.addEventListener('click', () => {
      const room = roomSelect.value;
      if (confirm('Clear chat history for #' + room + '?')) {
        clearChatHistory(room);
        showToast('Chat history cleared.', () => restoreChatHistory(room), 'info');
      }
    });
    exportBtn.addEventListener('click', () => {
      const room = roomSelect.value;
      const history = localStorage.getItem('chat-history-' + room);
      if (history) {
        const blob = new Blob([history], { type: 'application/json' });
        const url = URL.createObjectURL(blob);
        const a = document.createElement('a');
        a.href = url;
        a.download = room + '-chat-history.json';
        a.click();
        URL.revokeObjectURL(url);
        showToast('Chat history exported.', null, 'success');
      }
    });
    importBtn.addEventListener('click', () => importFile.click());
    importFile.addEventListener('change', (e) => {
      const file = e.target.files[0];
      const room = roomSelect.value;
      if (file) {
        const reader = new FileReader();
        reader.onload = function (evt) {
          try {
            const data = JSON.parse(evt.target.result);
            if (Array.isArray(data)) {
              localStorage.setItem('chat-history-' + room, JSON.stringify(data));
              loadChatHistory(room);
              showToast('Chat history imported.', null, 'success');
            } else {
              alert('Invalid file format');
            }
          } catch (_) {
            alert('Error parsing file');
          }
        };
        reader.readAsText(file);
      }
      importFile.value = '';
    });

    let typingTimer = null;
    ws.onmessage = (e) => {
      let env;
      try { env = JSON.parse(e.data); } catch(_) { return; }
      if (env.event === 'chat message') {
        const { user, msg, time } = env.data;
        appendMessage('<strong>' + escapeHTML(user) + ':</strong> ' + escapeHTML(msg), time);
        saveToLocalHistory(roomSelect.value, { user, msg, time });
      } else if (env.event === 'typing') {
        typingStatus.textContent = env.data + ' is typing...';
        if (typingTimer) clearTimeout(typingTimer);
        typingTimer = setTimeout(() => typingStatus.textContent = '', 2000);
      }
    };

    loadChatHistory(roomSelect.value);
  </script>
</body>
</html>`))

package workspace

import "livepreview/internal/vfs"

// DefaultTemplate is the React starter seeded into an empty workspace.
func DefaultTemplate() []vfs.VirtualFile {
	return []vfs.VirtualFile{
		{Path: "/package.json", InContext: true, Content: `{
  "name": "preview-app",
  "private": true,
  "version": "0.0.0",
  "type": "module",
  "dependencies": {
    "react": "^19.2.0",
    "react-dom": "^19.2.0",
    "lucide-react": "^0.263.1"
  }
}
`},
		{Path: "/index.html", InContext: true, Content: `<!doctype html>
<html lang="en">
  <head><meta charset="UTF-8" /><meta name="viewport" content="width=device-width, initial-scale=1.0" /><title>App</title></head>
  <body><div id="root"></div><script type="module" src="/src/index.tsx"></script></body>
</html>
`},
		{Path: "/src/index.tsx", InContext: true, Content: `import React from 'react';
import ReactDOM from 'react-dom/client';
import App from './App';
import './index.css';

ReactDOM.createRoot(document.getElementById('root')!).render(
  <React.StrictMode><App /></React.StrictMode>
);
`},
		{Path: "/src/App.tsx", InContext: true, Content: `import React from 'react';
import { Sparkles } from 'lucide-react';

export default function App() {
  return (
    <div style={{ display: 'flex', flexDirection: 'column', alignItems: 'center', justifyContent: 'center', height: '100vh' }}>
      <Sparkles size={64} />
      <h1>Preview ready</h1>
      <p>Edit src/App.tsx to start building.</p>
    </div>
  );
}
`},
		{Path: "/src/index.css", InContext: true, Content: `body {
  margin: 0;
  background: #020617;
  color: #f8fafc;
}
`},
	}
}

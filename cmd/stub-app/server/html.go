package server

// PhotosPage is the HTML served at /photos. It carries the landmarks the
// smoke tests look for: a heading, a "New Folder" button and navigation.
const PhotosPage = `<!DOCTYPE html>
<html>
<head>
    <title>Photos</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            margin: 0;
            display: flex;
            background: #f5f5f5;
        }
        aside {
            width: 200px;
            min-height: 100vh;
            background: #fff;
            box-shadow: 1px 0 4px rgba(0,0,0,0.1);
        }
        nav a {
            display: block;
            padding: 12px 20px;
            color: #333;
            text-decoration: none;
        }
        main { flex: 1; padding: 30px; }
        h1 { color: #333; margin-bottom: 20px; }
        button {
            background: #4285f4;
            color: white;
            border: none;
            padding: 12px 24px;
            border-radius: 4px;
            cursor: pointer;
            font-size: 16px;
        }
        button:hover { background: #3367d6; }
    </style>
</head>
<body>
    <aside>
        <nav>
            <a href="/photos">Photos</a>
            <a href="/albums">Albums</a>
            <a href="/trash">Trash</a>
        </nav>
    </aside>
    <main>
        <h1>Photos</h1>
        <button type="button" id="new-folder">New Folder</button>
        <ul id="folders"></ul>
    </main>
    <script>
        document.getElementById('new-folder').addEventListener('click', () => {
            const li = document.createElement('li');
            li.textContent = 'Untitled folder';
            document.getElementById('folders').appendChild(li);
        });
    </script>
</body>
</html>`
